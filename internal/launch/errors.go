package launch

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/harshul/brplaunch/internal/cargo"
	"github.com/harshul/brplaunch/internal/ports"
)

// Code identifies a launch failure category.
type Code string

const (
	// Resolution failures callers can correct by retrying with a path.
	CodeNoTargetsFound       Code = "NO_TARGETS_FOUND"
	CodeTargetNotFoundAtPath Code = "TARGET_NOT_FOUND_AT_PATH"
	CodePathDisambiguation   Code = "PATH_DISAMBIGUATION"

	CodeInvalidConfig Code = "INVALID_CONFIG"
	CodeBuildFailed   Code = "BUILD_FAILED"
	CodePortRange     Code = "PORT_RANGE"
	CodeProcessFailed Code = "PROCESS_FAILED"
	CodeInternal      Code = "INTERNAL"
)

// Error is the single error type returned by Launch. Resolution errors carry
// the candidate data needed to retry; everything else carries a cause and
// free-form context.
type Error struct {
	Code Code

	TargetName     string
	TargetKind     cargo.TargetKind
	Path           string
	AvailablePaths []string

	Message    string
	Context    map[string]any
	Cause      error
	Suggestion string
}

func newError(code Code, cfg Config, message string) *Error {
	return &Error{
		Code:       code,
		TargetName: cfg.TargetName,
		TargetKind: cfg.Kind,
		Path:       cfg.Path,
		Message:    message,
		Context:    make(map[string]any),
	}
}

// WithContext adds a diagnostic key/value pair.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// withConfig attaches the launch parameters in effect at the failure point.
func (e *Error) withConfig(cfg Config) *Error {
	return e.
		WithContext("target_name", cfg.TargetName).
		WithContext("target_type", cfg.Kind.String()).
		WithContext("profile", cfg.Profile).
		WithContext("path", cfg.Path).
		WithContext("port", cfg.Port)
}

// Structured reports whether the error is one of the resolution outcomes a
// caller can act on directly.
func (e *Error) Structured() bool {
	switch e.Code {
	case CodeNoTargetsFound, CodeTargetNotFoundAtPath, CodePathDisambiguation:
		return true
	}
	return false
}

func (e *Error) Error() string {
	var b strings.Builder
	head := e.headline()
	b.WriteString(head)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		b.WriteString("; context: ")
		b.WriteString(strings.Join(parts, ", "))
	}
	if e.Cause != nil && !e.Structured() && e.Cause.Error() != head {
		fmt.Fprintf(&b, "; cause: %v", e.Cause)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "; suggestion: %s", e.Suggestion)
	}
	return b.String()
}

func (e *Error) headline() string {
	kind := e.TargetKind.String()
	switch e.Code {
	case CodeNoTargetsFound:
		return fmt.Sprintf("no %s named '%s' found in any search path", kind, e.TargetName)
	case CodeTargetNotFoundAtPath:
		if e.Path == "" {
			return fmt.Sprintf("%s '%s' could not be resolved without a path; available paths: [%s]",
				kind, e.TargetName, strings.Join(e.AvailablePaths, " "))
		}
		return fmt.Sprintf("%s '%s' not found at path '%s'; available paths: [%s]",
			kind, e.TargetName, e.Path, strings.Join(e.AvailablePaths, " "))
	case CodePathDisambiguation:
		return fmt.Sprintf("found %d %s named '%s', specify path: [%s]",
			len(e.AvailablePaths), e.TargetKind.Plural(), e.TargetName, strings.Join(e.AvailablePaths, " "))
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// classify wraps err in the most specific *Error available. An existing
// *Error is returned unchanged.
func classify(err error, cfg Config) *Error {
	if le, ok := AsError(err); ok {
		return le
	}
	var be *cargo.BuildError
	if errors.As(err, &be) {
		return newError(CodeBuildFailed, cfg, fmt.Sprintf("failed to build %s '%s'", be.Kind, be.Name)).
			WithCause(err).
			WithContext("exit_code", be.ExitCode).
			WithContext("dir", be.Dir).
			WithSuggestion("fix the compile errors above and retry")
	}
	var re *ports.RangeError
	if errors.As(err, &re) {
		e := newError(CodePortRange, cfg, re.Error()).WithCause(err)
		if re.Reason == ports.ExceedsCeiling {
			e.WithContext("highest", re.Highest).WithContext("ceiling", ports.MaxValidPort)
		}
		return e.WithContext("instance_count", re.Count)
	}
	return newError(CodeInternal, cfg, err.Error()).WithCause(err).withConfig(cfg)
}
