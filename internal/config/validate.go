package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/state"
)

// Validation errors.
var (
	ErrInvalidServerURL = errors.New("server_url must be an http or https URL")
	ErrInvalidLogLevel  = errors.New("log_level must be 'debug', 'info', 'warn', or 'error'")
	ErrUnknownTheme     = errors.New("unknown theme")
	ErrUnknownAgent     = errors.New("unknown agent")
	ErrUnknownModel     = errors.New("unknown model")
	ErrEmptyFilename    = errors.New("export filename cannot be blank")
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidationError wraps a validation error with context.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateServerURL validates a server URL.
func ValidateServerURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{
			Field:   "server_url",
			Value:   raw,
			Message: "must be an http:// or https:// URL",
			Err:     ErrInvalidServerURL,
		}
	}
	return nil
}

// ValidateLogLevel validates a log level name.
func ValidateLogLevel(level string) error {
	if !validLogLevels[strings.ToLower(level)] {
		return &ValidationError{
			Field:   "log_level",
			Value:   level,
			Message: "must be 'debug', 'info', 'warn', or 'error'",
			Err:     ErrInvalidLogLevel,
		}
	}
	return nil
}

func validateChoice(field, value string, allowed []string, sentinel error) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: "must be one of " + strings.Join(allowed, ", "),
		Err:     sentinel,
	}
}

// Validate checks the effective configuration, after environment overrides.
// A nil config is valid.
func (c *Config) Validate() error {
	if err := ValidateServerURL(c.GetServerURL()); err != nil {
		return err
	}
	if err := ValidateLogLevel(c.GetLogLevel()); err != nil {
		return err
	}
	if err := validateChoice("tui.theme", c.GetTheme(), state.ThemeIDs, ErrUnknownTheme); err != nil {
		return err
	}
	if err := validateChoice("tui.agent", c.GetAgent(), state.AgentIDs, ErrUnknownAgent); err != nil {
		return err
	}
	if err := validateChoice("tui.model", c.GetModel(), state.ModelIDs, ErrUnknownModel); err != nil {
		return err
	}
	if c != nil && c.Export.Filename != "" && strings.TrimSpace(c.Export.Filename) == "" {
		return &ValidationError{
			Field:   "export.filename",
			Message: "cannot be blank",
			Err:     ErrEmptyFilename,
		}
	}
	return nil
}
