// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/meshintel/labhal/pkg/types"
)

// ResultsFile is the on-disk representation of one reconciliation run.
// A run can be saved and later re-exported without re-querying the
// source and signal APIs.
type ResultsFile struct {
	Run     RunParams   `yaml:"run"`
	Rows    []types.Row `yaml:"rows"`
	Summary RunSummary  `yaml:"summary"`
}

// RunParams records what the run reconciled against.
type RunParams struct {
	Collection string `yaml:"collection"`
	StartYear  int    `yaml:"start_year"`
	EndYear    int    `yaml:"end_year"`
}

// RunSummary stores row statistics and a timestamp.
type RunSummary struct {
	Total        int       `yaml:"total"`
	InCollection int       `yaml:"in_collection"`
	Timestamp    time.Time `yaml:"timestamp"`
}

// WriteResultsFile saves the run parameters and rows to a YAML file.
func WriteResultsFile(path string, params RunParams, rows []types.Row) error {
	rf := ResultsFile{
		Run:  params,
		Rows: rows,
		Summary: RunSummary{
			Total:     len(rows),
			Timestamp: time.Now(),
		},
	}
	for _, row := range rows {
		if row.Verdict.InCollection() {
			rf.Summary.InCollection++
		}
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling results file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultsFile loads a previously saved run from disk.
func ReadResultsFile(path string) (*ResultsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}
	var rf ResultsFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing results file: %w", err)
	}
	return &rf, nil
}
