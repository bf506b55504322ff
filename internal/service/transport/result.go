package transport

import "fmt"

// Kind classifies a delivery failure. Connectivity problems and non-2xx
// answers share the same kind on purpose: callers show one message for both.
type Kind string

const NetworkError Kind = "network_error"

// Result is either Success or Failure.
type Result interface {
	isResult()
}

// Success carries the reply body exactly as the endpoint returned it.
type Success struct {
	Text string
}

// Failure describes why the message could not be delivered. StatusCode is
// zero when no HTTP response was received.
type Failure struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (Success) isResult() {}
func (Failure) isResult() {}

func (f Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("%s: status %d", f.Kind, f.StatusCode)
}

func (f Failure) Unwrap() error {
	return f.Err
}
