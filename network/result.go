package network

import "fmt"

// Result is the decoded outcome of a command endpoint. It is either a
// Success or a Failure; handlers switch on the concrete type.
type Result interface {
	Message() string
	// Severity is the toast severity the backend asked for.
	Severity() string
	result()
}

// Success is returned when the backend reports status "success".
type Success struct {
	Msg string
}

func (s Success) Message() string  { return s.Msg }
func (s Success) Severity() string { return StatusSuccess }
func (Success) result()            {}

// Failure is a server-reported error: the call went through and decoded,
// but the status was something other than "success".
type Failure struct {
	Status string
	Msg    string
}

func (f Failure) Message() string { return f.Msg }

// Severity echoes the raw status, falling back to "error" when the backend
// sent an empty one.
func (f Failure) Severity() string {
	if f.Status == "" {
		return "error"
	}
	return f.Status
}

func (Failure) result() {}

// TransportError covers everything that prevented a decodable answer:
// dial/IO errors, cancelled contexts and bodies that are not a command result.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func decodeResult(r commandResponse) Result {
	if *r.Status == StatusSuccess {
		return Success{Msg: r.Message}
	}
	return Failure{Status: *r.Status, Msg: r.Message}
}
