package run

import (
	"fmt"

	"asepower/domain/core"
)

// Kind names the pipeline step a run performed.
type Kind string

const (
	KindSimulate  Kind = "simulate"
	KindMerge     Kind = "merge"
	KindSummarize Kind = "summarize"
)

func (k Kind) Valid() bool {
	switch k {
	case KindSimulate, KindMerge, KindSummarize:
		return true
	}
	return false
}

// Counts records how much work a run did.
type Counts struct {
	Pairs      int `json:"pairs,omitempty"`
	Dropped    int `json:"dropped,omitempty"`
	Duplicates int `json:"duplicates,omitempty"`
	Files      int `json:"files"`
	Rows       int `json:"rows,omitempty"`
}

// Fingerprint identifies the inputs and parameters of a run. Two runs with
// equal fingerprints read the same inputs with the same settings.
type Fingerprint struct {
	InputHash   core.Hash `json:"input_hash"`
	Parameters  string    `json:"parameters"`
	Fingerprint core.Hash `json:"fingerprint"`
}

// NewFingerprint hashes inputs (order-independent) together with parameters.
func NewFingerprint(kind Kind, inputs []string, parameters string) Fingerprint {
	inputHash := core.ComputeInputHash(inputs)
	data := fmt.Sprintf("kind:%s|inputs:%s|params:%s", kind, inputHash, parameters)
	return Fingerprint{
		InputHash:   inputHash,
		Parameters:  parameters,
		Fingerprint: core.NewHash([]byte(data)),
	}
}
