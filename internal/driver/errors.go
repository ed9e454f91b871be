package driver

// PhaseError tags a compilation failure with the phase that produced it.
// Stage errors stay reachable through errors.As.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return e.Phase + ": " + e.Err.Error()
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
