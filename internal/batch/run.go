package batch

import (
	"context"

	"github.com/roach88/donorlog/internal/donation"
	"github.com/roach88/donorlog/internal/logging"
	"github.com/roach88/donorlog/internal/registry"
)

// Result is the outcome of a script run.
type Result struct {
	Script string       `json:"script"`
	Steps  []StepResult `json:"steps"`
	Failed int          `json:"failed"`
}

// StepResult is the outcome of one step. Skipped steps are not reported.
type StepResult struct {
	Step      int               `json:"step"`
	Op        string            `json:"op"`
	Code      *int              `json:"code,omitempty"`
	Removed   *bool             `json:"removed,omitempty"`
	Records   []donation.Fields `json:"records,omitempty"`
	ErrorCode string            `json:"error_code,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// OK reports whether the step succeeded.
func (s StepResult) OK() bool {
	return s.Error == ""
}

// Run executes the steps of script in order through reg.
//
// A failing step is recorded in the result. Unless ContinueOnError is set,
// the run stops after the first failure. Run itself returns an error only
// when ctx is cancelled.
func Run(ctx context.Context, reg *registry.Registry, script *Script) (*Result, error) {
	logger := logging.FromContext(ctx).With("script", script.Name)
	result := &Result{Script: script.Name, Steps: []StepResult{}}

	for i, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		sr := runStep(ctx, reg, step)
		sr.Step = i + 1
		result.Steps = append(result.Steps, sr)

		if !sr.OK() {
			result.Failed++
			logger.Warn("step failed", "step", sr.Step, "op", sr.Op, "error", sr.Error)
			if !script.ContinueOnError {
				break
			}
		}
	}

	logger.Info("script finished", "steps", len(result.Steps), "failed", result.Failed)
	return result, nil
}

func runStep(ctx context.Context, reg *registry.Registry, step Step) StepResult {
	sr := StepResult{Op: step.Op()}

	switch sr.Op {
	case OpInsert:
		code := step.Insert.Code
		sr.Code = &code
		if _, err := reg.Insert(ctx, *step.Insert); err != nil {
			sr.fail(err)
		}

	case OpDelete:
		code := *step.Delete
		sr.Code = &code
		removed, err := reg.Delete(ctx, code)
		if err != nil {
			sr.fail(err)
			break
		}
		sr.Removed = &removed

	case OpList:
		records, err := reg.List(ctx)
		if err != nil {
			sr.fail(err)
			break
		}
		sr.Records = make([]donation.Fields, len(records))
		for i, r := range records {
			sr.Records[i] = r.Fields()
		}
	}

	return sr
}

func (s *StepResult) fail(err error) {
	s.ErrorCode = string(donation.CodeOf(err))
	s.Error = err.Error()
}
