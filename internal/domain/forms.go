package domain

import (
	"fmt"
	"strings"
)

// Credentials are the login form values.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("%w: username", ErrMissingField)
	}
	if c.Password == "" {
		return fmt.Errorf("%w: password", ErrMissingField)
	}
	return nil
}

// ManualAlert is an operator-issued alert.
type ManualAlert struct {
	Town     string `json:"town"`
	Message  string `json:"message"`
	Severity Level  `json:"severity"`
}

func (a ManualAlert) Validate() error {
	if a.Town == "" {
		return fmt.Errorf("%w: town", ErrMissingField)
	}
	if _, ok := LookupTown(a.Town); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTown, a.Town)
	}
	if strings.TrimSpace(a.Message) == "" {
		return fmt.Errorf("%w: message", ErrMissingField)
	}
	if a.Severity == LevelUnknown {
		return fmt.Errorf("%w: severity", ErrMissingField)
	}
	return nil
}

// Registration signs a phone number up for a town's SMS alerts.
type Registration struct {
	Phone string `json:"phone"`
	Town  string `json:"town"`
	Name  string `json:"name"`
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Phone) == "" {
		return fmt.Errorf("%w: phone", ErrMissingField)
	}
	if r.Town == "" {
		return fmt.Errorf("%w: town", ErrMissingField)
	}
	if _, ok := LookupTown(r.Town); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTown, r.Town)
	}
	return nil
}
