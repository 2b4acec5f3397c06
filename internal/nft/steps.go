package nft

import "fmt"

// step is one stage of a minting pipeline.
type step[S any] struct {
	name string
	run  func(S) error
}

// StepError reports the pipeline stage that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// stepHook, when set, runs ahead of every step and can abort the pipeline.
// Only tests set it.
var stepHook func(name string) error

// runSteps runs steps in order and stops at the first failure.
func runSteps[S any](state S, steps []step[S]) error {
	for _, s := range steps {
		if stepHook != nil {
			if err := stepHook(s.name); err != nil {
				return &StepError{Step: s.name, Err: err}
			}
		}
		if err := s.run(state); err != nil {
			return &StepError{Step: s.name, Err: err}
		}
	}
	return nil
}
