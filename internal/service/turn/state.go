package turn

import "fmt"

// State is one step of a turn run.
type State string

const (
	StateLoading    State = "loading"
	StateSelecting  State = "selecting"
	StateGenerating State = "generating"
	StatePersisting State = "persisting"
	StateRendering  State = "rendering"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// StageError records which state a run failed in.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("turn failed while %s: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
