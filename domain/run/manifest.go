package run

import (
	"encoding/json"
	"fmt"

	"asepower/domain/core"
)

// ManifestSuffix is appended to a run's primary output path.
const ManifestSuffix = ".manifest.json"

// Manifest describes one completed run. It is written next to the run's
// output once every output file is in place.
type Manifest struct {
	RunID       core.RunID     `json:"run_id"`
	Kind        Kind           `json:"kind"`
	Inputs      []string       `json:"inputs"`
	Output      string         `json:"output"`
	Fingerprint Fingerprint    `json:"fingerprint"`
	Counts      Counts         `json:"counts"`
	CreatedAt   core.Timestamp `json:"created_at"`
}

// NewManifest creates a manifest for a run over inputs writing to output.
func NewManifest(runID core.RunID, kind Kind, inputs []string, output, parameters string, counts Counts) *Manifest {
	return &Manifest{
		RunID:       runID,
		Kind:        kind,
		Inputs:      append([]string(nil), inputs...),
		Output:      output,
		Fingerprint: NewFingerprint(kind, inputs, parameters),
		Counts:      counts,
		CreatedAt:   core.Now(),
	}
}

// ManifestPath is where the manifest of a run writing output belongs.
func ManifestPath(output string) string {
	return output + ManifestSuffix
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return fmt.Errorf("run manifest: run_id cannot be empty")
	}
	if !m.Kind.Valid() {
		return fmt.Errorf("run manifest: unknown kind %q", m.Kind)
	}
	if m.Output == "" {
		return fmt.Errorf("run manifest: output cannot be empty")
	}
	if m.Fingerprint.Fingerprint.IsEmpty() {
		return fmt.Errorf("run manifest: fingerprint cannot be empty")
	}
	if m.CreatedAt.IsZero() {
		return fmt.Errorf("run manifest: created_at cannot be empty")
	}
	return nil
}

// Marshal encodes the manifest as indented JSON.
func (m *Manifest) Marshal() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(m, "", "  ")
}
