// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/digest-engine/pkg/types"
)

// RunFile is the on-disk record of a completed pipeline run: the topics
// and weights that produced it, the ranked results, and summary counts.
// A saved run can be inspected or re-ranked later without re-discovery.
type RunFile struct {
	Topics  []string               `yaml:"topics"`
	Config  RunFileConfig          `yaml:"config"`
	Results []types.ScoredDocument `yaml:"results"`
	Summary RunSummary             `yaml:"summary"`
}

// RunFileConfig snapshots the scoring parameters that produced the results.
type RunFileConfig struct {
	Weights        types.Weights `yaml:"weights"`
	RelevanceFloor float64       `yaml:"relevance_floor"`
}

// RunSummary stores result statistics and a timestamp.
type RunSummary struct {
	Ranked            int          `yaml:"ranked"`
	DuplicatesRemoved int          `yaml:"duplicates_removed"`
	Dropped           []Diagnostic `yaml:"dropped,omitempty"`
	RelevanceFallback int          `yaml:"relevance_fallback,omitempty"`
	Timestamp         time.Time    `yaml:"timestamp"`
}

// WriteRunFile saves a pipeline run to a YAML file.
func WriteRunFile(path string, topics []string, cfg types.ScoringConfig, out Output) error {
	rf := RunFile{
		Topics: topics,
		Config: RunFileConfig{
			Weights:        cfg.Weights,
			RelevanceFloor: cfg.RelevanceFloor,
		},
		Results: out.Ranked,
		Summary: RunSummary{
			Ranked:            len(out.Ranked),
			DuplicatesRemoved: out.DupsRemoved,
			Dropped:           out.Dropped,
			RelevanceFallback: out.Fallbacks,
			Timestamp:         time.Now(),
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRunFile loads a previously saved run file from disk.
func ReadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &rf, nil
}

// Output reconstructs the pipeline output a run file recorded, so saved
// runs can be re-rendered with the same formatters.
func (rf *RunFile) Output() Output {
	out := Output{
		Ranked:      rf.Results,
		Dropped:     rf.Summary.Dropped,
		DupsRemoved: rf.Summary.DuplicatesRemoved,
		Fallbacks:   rf.Summary.RelevanceFallback,
	}
	for _, sd := range rf.Results {
		if sd.Repeat {
			out.Repeats++
		}
	}
	return out
}

// BatchFile is a hand-authored or exported set of candidate documents for
// offline ranking, bypassing the discovery backends.
type BatchFile struct {
	Topics    []string                  `yaml:"topics,omitempty"`
	Documents []types.CandidateDocument `yaml:"documents"`
}

// ReadBatchFile loads candidate documents from a YAML batch file.
func ReadBatchFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	var bf BatchFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	if len(bf.Documents) == 0 {
		return nil, fmt.Errorf("batch file %s contains no documents", path)
	}
	return &bf, nil
}
