// Package ux renders command output and decorates errors for the terminal.
package ux

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/rolegate/internal/errors"
)

// Output is a --output value
type Output string

const (
	OutputText Output = "text"
	OutputJSON Output = "json"
	OutputYAML Output = "yaml"
)

// Outputs lists the accepted --output values
var Outputs = []Output{OutputText, OutputJSON, OutputYAML}

// TextRenderer is implemented by values with a human-readable form
type TextRenderer interface {
	RenderText(w io.Writer) error
}

// ParseOutput validates an --output value. Empty means text and "yml" is
// accepted for yaml.
func ParseOutput(s string) (Output, error) {
	switch o := Output(strings.ToLower(strings.TrimSpace(s))); o {
	case "", OutputText:
		return OutputText, nil
	case "yml", OutputYAML:
		return OutputYAML, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid --output %q", s)).
		WithSuggestion("Use one of: text, json, yaml")
}

// Structured reports whether o is meant for machines
func (o Output) Structured() bool {
	return o == OutputJSON || o == OutputYAML
}

// Print writes v to w in format o.
//
// JSON is indented and YAML uses two-space indentation. Text uses the
// value's TextRenderer, prints strings and Stringers as a line and falls
// back to YAML for everything else.
func Print(w io.Writer, o Output, v interface{}) error {
	switch o {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		return printYAML(w, v)
	case OutputText, "":
		return printText(w, v)
	}
	return fmt.Errorf("unknown output %q", o)
}

func printYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func printText(w io.Writer, v interface{}) error {
	switch t := v.(type) {
	case TextRenderer:
		return t.RenderText(w)
	case string:
		_, err := fmt.Fprintln(w, t)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, t.String())
		return err
	default:
		return printYAML(w, v)
	}
}
