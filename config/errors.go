package config

import "fmt"

// Error is a ConfigError per spec.md §7: fatal, halts the run before any
// CC is processed. It wraps every field-level validation failure found so
// a caller sees the whole list at once instead of fixing one typo per
// run.
type Error struct {
	Violations []string
}

func (e *Error) Error() string {
	msg := "config: invalid configuration:"
	for _, v := range e.Violations {
		msg += "\n  - " + v
	}
	return msg
}

func fieldf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
