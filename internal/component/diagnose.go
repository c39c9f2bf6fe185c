package component

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

const maxNameLength = 30

var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// Severity grades a single Check.
type Severity int

const (
	// SeverityOK marks a field that needs no attention.
	SeverityOK Severity = iota
	// SeveritySuggestion marks a field Load accepts but that could be improved.
	SeveritySuggestion
	// SeverityFix marks a problem that makes Load fail.
	SeverityFix
)

// Check is the outcome of inspecting one field, or the document as a whole
// when Field is empty.
type Check struct {
	Field    string
	Severity Severity
	Message  string
}

// Report lists every Check run against one definition. Unlike Load it does
// not stop at the first problem.
type Report struct {
	Path   string
	Checks []Check
}

// Fixes returns the checks that make Load fail.
func (r Report) Fixes() []Check {
	return r.filter(SeverityFix)
}

// Suggestions returns the checks Load tolerates.
func (r Report) Suggestions() []Check {
	return r.filter(SeveritySuggestion)
}

// OK reports whether Load would accept the definition.
func (r Report) OK() bool {
	return len(r.Fixes()) == 0
}

func (r Report) filter(severity Severity) []Check {
	var out []Check
	for _, c := range r.Checks {
		if c.Severity == severity {
			out = append(out, c)
		}
	}
	return out
}

// Diagnose inspects the definition at path. Reading and format problems are
// reported as fixes rather than returned as errors.
func Diagnose(path string) Report {
	report := Report{Path: path}

	if err := checkExtension(path); err != nil {
		report.Checks = append(report.Checks, Check{Severity: SeverityFix, Message: err.Error()})
		return report
	}

	data, err := os.ReadFile(path)
	if err != nil {
		report.Checks = append(report.Checks, Check{Severity: SeverityFix, Message: fmt.Sprintf("read definition: %v", err)})
		return report
	}

	report.Checks = DiagnoseBytes(data)
	return report
}

// DiagnoseBytes runs every field check against a YAML document.
func DiagnoseBytes(data []byte) []Check {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []Check{{Severity: SeverityFix, Message: fmt.Sprintf("parse YAML: %v", err)}}
	}

	fields, err := asMapping(doc)
	if err != nil {
		return []Check{{Severity: SeverityFix, Message: err.Error()}}
	}

	return []Check{
		checkName(fields),
		checkRequired(fields, "version"),
		checkOptional(fields, "description", nil),
		checkOptional(fields, "repository", repositorySuggestion),
	}
}

func checkName(fields map[string]any) Check {
	check := checkRequired(fields, "name")
	if check.Severity != SeverityOK {
		return check
	}

	name := fields["name"].(string)
	switch {
	case !namePattern.MatchString(name):
		check.Severity = SeveritySuggestion
		check.Message = fmt.Sprintf("%q should start with a letter and contain only letters, digits, '-' or '_'", name)
	case len(name) >= maxNameLength:
		check.Severity = SeveritySuggestion
		check.Message = fmt.Sprintf("%q should be shorter than %d characters", name, maxNameLength)
	}
	return check
}

func checkRequired(fields map[string]any, key string) Check {
	if _, err := requiredString(fields, key); err != nil {
		return Check{Field: key, Severity: SeverityFix, Message: validationMessage(err)}
	}
	return Check{Field: key, Severity: SeverityOK, Message: fields[key].(string)}
}

func checkOptional(fields map[string]any, key string, suggest func(string) string) Check {
	value, err := optionalString(fields, key)
	if err != nil {
		return Check{Field: key, Severity: SeverityFix, Message: validationMessage(err)}
	}
	if value == nil {
		return Check{Field: key, Severity: SeveritySuggestion, Message: "is not set"}
	}
	if suggest != nil {
		if msg := suggest(*value); msg != "" {
			return Check{Field: key, Severity: SeveritySuggestion, Message: msg}
		}
	}
	return Check{Field: key, Severity: SeverityOK, Message: *value}
}

func repositorySuggestion(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Sprintf("%q is not an absolute URL", raw)
	}
	return ""
}

func validationMessage(err error) string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	return err.Error()
}
