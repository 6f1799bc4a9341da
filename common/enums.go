// Package common keeps enums shared between configuration and processing
// packages so they do not have to import each other.
package common

import (
	"fmt"
	"strings"
)

// Specification of requested migration output handling.
type OutputMode int

const (
	OutputModeWrite OutputMode = iota
	OutputModeDryRun
	OutputModeDiff
)

var outputModeNames = []string{"write", "dryrun", "diff"}

func (o OutputMode) IsValid() bool {
	return o >= OutputModeWrite && o <= OutputModeDiff
}

func (o OutputMode) String() string {
	if !o.IsValid() {
		return fmt.Sprintf("OutputMode(%d)", int(o))
	}
	return outputModeNames[o]
}

// WritesFiles reports if this mode modifies anything on disk.
func (o OutputMode) WritesFiles() bool {
	return o == OutputModeWrite
}

func OutputModeNames() []string {
	return append([]string{}, outputModeNames...)
}

func ParseOutputMode(name string) (OutputMode, error) {
	for i, n := range outputModeNames {
		if strings.EqualFold(n, name) {
			return OutputMode(i), nil
		}
	}
	return OutputMode(0), fmt.Errorf("%s is not a valid OutputMode", name)
}

func MustParseOutputMode(name string) OutputMode {
	m, err := ParseOutputMode(name)
	if err != nil {
		panic(err)
	}
	return m
}

func (o OutputMode) MarshalText() ([]byte, error) {
	if !o.IsValid() {
		return nil, fmt.Errorf("%d is not a valid OutputMode", int(o))
	}
	return []byte(o.String()), nil
}

func (o *OutputMode) UnmarshalText(text []byte) error {
	m, err := ParseOutputMode(string(text))
	if err != nil {
		return err
	}
	*o = m
	return nil
}

// Severity of a collected migration warning.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

var severityNames = []string{"warning", "error"}

func (s Severity) IsValid() bool {
	return s >= SeverityWarning && s <= SeverityError
}

func (s Severity) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

func ParseSeverity(name string) (Severity, error) {
	for i, n := range severityNames {
		if strings.EqualFold(n, name) {
			return Severity(i), nil
		}
	}
	return Severity(0), fmt.Errorf("%s is not a valid Severity", name)
}

func (s Severity) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%d is not a valid Severity", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
