package ui

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/harshul/brplaunch/internal/launch"
)

// Output formats accepted by --output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormat reports whether f is a known output format.
func ValidFormat(f string) bool {
	return f == FormatText || f == FormatJSON || f == FormatYAML
}

// Encode writes v to w as JSON or YAML.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// ErrorDocument is the machine-readable form of a failed command.
type ErrorDocument struct {
	Error ErrorBody `json:"error" yaml:"error"`
}

type ErrorBody struct {
	Code           string         `json:"code" yaml:"code"`
	Message        string         `json:"message" yaml:"message"`
	TargetName     string         `json:"target_name,omitempty" yaml:"target_name,omitempty"`
	TargetType     string         `json:"target_type,omitempty" yaml:"target_type,omitempty"`
	Path           string         `json:"path,omitempty" yaml:"path,omitempty"`
	AvailablePaths []string       `json:"available_paths,omitempty" yaml:"available_paths,omitempty"`
	Context        map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
	Suggestion     string         `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// NewErrorDocument converts err, keeping the payload of a *launch.Error.
func NewErrorDocument(err error) ErrorDocument {
	le, ok := launch.AsError(err)
	if !ok {
		return ErrorDocument{Error: ErrorBody{Code: string(launch.CodeInternal), Message: err.Error()}}
	}
	return ErrorDocument{Error: ErrorBody{
		Code:           string(le.Code),
		Message:        le.Error(),
		TargetName:     le.TargetName,
		TargetType:     le.TargetKind.String(),
		Path:           le.Path,
		AvailablePaths: le.AvailablePaths,
		Context:        le.Context,
		Suggestion:     le.Suggestion,
	}}
}
