package gateway

import "fmt"

// GatewayError means PipraPay was reachable but returned an error, or a
// success body missing a required field.
type GatewayError struct {
	Op      string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("piprapay %s: %s", e.Op, e.Message)
}

// ConnectionError wraps a transport-level failure reaching PipraPay,
// including an unparseable response body.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("piprapay %s: connection error: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
