// Package batch runs scripted sequences of donation operations.
//
// A script is the non-interactive form of the menu: a YAML list of list,
// insert and delete steps applied in order through a registry.
//
//	name: seed
//	steps:
//	  - insert: {code: 1, name: Ana, national_id: "111", birth_date: "1990-05-01", blood_type: O+, volume: 450}
//	  - delete: 1
//	  - list: true
package batch

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/donorlog/internal/donation"
)

// Script is a named sequence of steps.
type Script struct {
	// Name identifies the script in logs and output.
	Name string `yaml:"name"`

	// ContinueOnError keeps running after a failed step. By default the
	// first failure stops the run.
	ContinueOnError bool `yaml:"continue_on_error,omitempty"`

	// Steps run in order. Each step sets exactly one operation.
	Steps []Step `yaml:"steps"`
}

// Step is a single operation.
type Step struct {
	// Insert holds the fields of a record to insert.
	Insert *donation.Fields `yaml:"insert,omitempty"`

	// Delete is the code to delete.
	Delete *int `yaml:"delete,omitempty"`

	// List, when true, records the full store contents at this point.
	List bool `yaml:"list,omitempty"`
}

// Operation names.
const (
	OpInsert = "insert"
	OpDelete = "delete"
	OpList   = "list"
)

// Op returns the operation the step performs, or "" if none or several are set.
func (s Step) Op() string {
	var ops []string
	if s.Insert != nil {
		ops = append(ops, OpInsert)
	}
	if s.Delete != nil {
		ops = append(ops, OpDelete)
	}
	if s.List {
		ops = append(ops, OpList)
	}
	if len(ops) != 1 {
		return ""
	}
	return ops[0]
}

// LoadScript reads and parses a script YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or has an invalid step.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return ParseScript(data)
}

// ParseScript parses script YAML with strict field checking.
func ParseScript(data []byte) (*Script, error) {
	var script Script
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&script); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// Validate checks the script has a name, at least one step, and exactly one
// operation per step.
func (s *Script) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("script: name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("script %q: at least one step is required", s.Name)
	}
	for i, step := range s.Steps {
		if step.Op() == "" {
			return fmt.Errorf("script %q: step %d must set exactly one of insert, delete, list", s.Name, i+1)
		}
	}
	return nil
}
