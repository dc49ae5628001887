package validate

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Stable codes carried by the check helpers so callers can branch on
// the kind of violation without parsing messages.
const (
	CodeGeneric  = "VALIDATION_ERROR"
	CodeRequired = "REQUIRED"
	CodeLength   = "LENGTH"
	CodeRange    = "RANGE"
	CodeURL      = "URL"
	CodeEmail    = "EMAIL"
	CodePort     = "PORT"
)

// CheckNotEmpty fails when the value is empty or whitespace only.
func CheckNotEmpty(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return FieldError{
			Field:   field,
			Message: "must not be empty",
			Code:    CodeRequired,
		}
	}
	return nil
}

// CheckLength fails when the string length falls outside [min, max].
func CheckLength(value string, min, max int, field string) error {
	if n := len(value); n < min || n > max {
		return FieldError{
			Field:   field,
			Message: fmt.Sprintf("must be between %d and %d characters long (currently: %d)", min, max, n),
			Code:    CodeLength,
		}
	}
	return nil
}

// CheckRange fails when the value falls outside [min, max]. Bounds are
// inclusive on both sides.
func CheckRange[T cmp.Ordered](value, min, max T, field string) error {
	if value < min || value > max {
		return FieldError{
			Field:   field,
			Message: fmt.Sprintf("must be between %v and %v (currently: %v)", min, max, value),
			Code:    CodeRange,
		}
	}
	return nil
}

// CheckURL fails unless the value starts with http:// or https://.
func CheckURL(value, field string) error {
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return FieldError{
			Field:   field,
			Message: "must be a valid URL (start with http:// or https://)",
			Code:    CodeURL,
		}
	}
	return nil
}

// CheckEmail fails unless the value looks like an email address.
// This is a shape check, not RFC 5322 parsing.
func CheckEmail(value, field string) error {
	if !strings.Contains(value, "@") || !strings.Contains(value, ".") {
		return FieldError{
			Field:   field,
			Message: "must be a valid email address",
			Code:    CodeEmail,
		}
	}
	return nil
}

// CheckPort fails unless the value is a valid TCP port (1-65535).
func CheckPort(value int, field string) error {
	if value < 1 || value > 65535 {
		return FieldError{
			Field:   field,
			Message: fmt.Sprintf("must be a valid port between 1 and 65535 (currently: %d)", value),
			Code:    CodePort,
		}
	}
	return nil
}

// validLogLevels accepted by CheckLogLevel.
var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// CheckServer validates a host/port pair.
func CheckServer(host string, port int) error {
	if err := CheckNotEmpty(host, "host"); err != nil {
		return err
	}
	return CheckPort(port, "port")
}

// CheckDatabase validates a connection URL and pool size.
func CheckDatabase(url string, poolSize int) error {
	if err := CheckNotEmpty(url, "database_url"); err != nil {
		return err
	}
	return CheckRange(poolSize, 1, 100, "pool_size")
}

// CheckLogLevel validates a logging level name.
func CheckLogLevel(level string) error {
	if !lo.Contains(validLogLevels, strings.ToLower(level)) {
		return FieldError{
			Field:   "level",
			Message: fmt.Sprintf("logging level %q is invalid (valid: %s)", level, strings.Join(validLogLevels, ", ")),
			Code:    CodeGeneric,
		}
	}
	return nil
}
