// Package rscript runs the external read-count simulator.
package rscript

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"asepower/internal"
	"asepower/internal/errors"
	"asepower/ports"
)

// maxOutputTail bounds how much simulator output is kept in an error.
const maxOutputTail = 2048

// Simulator invokes `<rscript> <script> <theta> <simruns> <outprefix>
// <nbiorep> <allelicreads>` once per job.
type Simulator struct {
	rscript string
	script  string
	logger  *internal.Logger
}

// NewSimulator creates a simulator running script with the rscript binary.
func NewSimulator(rscript, script string, logger *internal.Logger) *Simulator {
	if rscript == "" {
		rscript = "Rscript"
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Simulator{rscript: rscript, script: script, logger: logger}
}

// Args returns the command line of job without the binary.
func (s *Simulator) Args(job ports.SimulationJob) []string {
	return []string{
		s.script,
		strconv.FormatFloat(job.Key.Theta, 'f', -1, 64),
		strconv.Itoa(job.Key.SimRuns),
		job.OutputPrefix,
		strconv.Itoa(job.Key.NBiorep),
		strconv.Itoa(job.Key.AllelicReads),
	}
}

// Simulate implements ports.Simulator.
func (s *Simulator) Simulate(ctx context.Context, job ports.SimulationJob) error {
	if s.script == "" {
		return errors.ConfigInvalid("simulator script is not configured (ASEPOWER_SIM_SCRIPT)")
	}
	args := s.Args(job)
	s.logger.Debug("[Simulator] %s %s", s.rscript, strings.Join(args, " "))

	startTime := time.Now()
	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, s.rscript, args...)
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return errors.ExternalServiceError("simulator",
			fmt.Errorf("%s: %w: %s", job.OutputPrefix, err, tail(output.String())))
	}
	s.logger.Trace("[Simulator] %s done in %s", job.OutputPrefix, time.Since(startTime).Round(time.Millisecond))
	return nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxOutputTail {
		s = "..." + s[len(s)-maxOutputTail:]
	}
	return s
}
