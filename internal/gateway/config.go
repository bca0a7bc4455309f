package gateway

import "errors"

// ErrMisconfigured is returned when the gateway config is missing one of the
// required fields. The adapter cannot be constructed without them.
var ErrMisconfigured = errors.New("piprapay is misconfigured: api key, api url and currency are required")

// Config holds the PipraPay credentials and checkout URLs. It is supplied
// once at construction and never mutated afterwards.
type Config struct {
	APIKey       string
	APIURL       string
	Currency     string
	AutoRedirect bool
	ReturnURL    string
	CancelURL    string
	NotifyURL    string
}

func (c Config) Validate() error {
	if c.APIKey == "" || c.APIURL == "" || c.Currency == "" {
		return ErrMisconfigured
	}
	return nil
}
