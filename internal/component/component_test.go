package component

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeDefinition(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write definition: %v", err)
	}
	return path
}

func TestLoadMinimalDefinition(t *testing.T) {
	t.Parallel()

	path := writeDefinition(t, "svc.yaml", "name: svc\nversion: \"1.0\"\n")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Name != "svc" || c.Version != "1.0" {
		t.Fatalf("unexpected component %+v", c)
	}
	if c.Description != nil || c.Repository != nil {
		t.Fatalf("expected optional fields to be unset, got %+v", c)
	}
}

func TestLoadFullDefinition(t *testing.T) {
	t.Parallel()

	path := writeDefinition(t, "api.YML", `name: api
version: 2.1.0-rc1
description: Public API gateway
repository: https://github.com/example/api
owner: platform-team
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Version != "2.1.0-rc1" {
		t.Fatalf("expected version stored verbatim, got %q", c.Version)
	}
	if c.Description == nil || *c.Description != "Public API gateway" {
		t.Fatalf("unexpected description %v", c.Description)
	}
	if c.Repository == nil || *c.Repository != "https://github.com/example/api" {
		t.Fatalf("unexpected repository %v", c.Repository)
	}
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"component.txt", "component.json", "component"} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			// The file does not exist: the extension check must fail before any I/O.
			path := filepath.Join(t.TempDir(), name)

			_, err := Load(path)
			var formatErr *UnsupportedFormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("expected UnsupportedFormatError, got %v", err)
			}
			if formatErr.Path != path {
				t.Fatalf("unexpected path %q", formatErr.Path)
			}
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Fatalf("expected error to match ErrUnsupportedFormat")
			}
		})
	}
}

func TestLoadMissingRequiredField(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		content string
		field   string
	}{
		"missing version": {content: "name: svc\n", field: "version"},
		"missing name":    {content: "version: \"1.0\"\n", field: "name"},
		"empty document":  {content: "", field: "name"},
		"null name":       {content: "name: ~\nversion: \"1.0\"\n", field: "name"},
		"numeric version": {content: "name: svc\nversion: 1.0\n", field: "version"},
		"list repository": {content: "name: svc\nversion: \"1\"\nrepository: [a, b]\n", field: "repository"},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := writeDefinition(t, "svc.yaml", tc.content)

			_, err := Load(path)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validationErr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, validationErr.Field)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected error to match ErrValidation")
			}
		})
	}
}

func TestParseRejectsNonMappingDocument(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("- name: svc\n- version: 1\n"))
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Field != "" {
		t.Fatalf("expected document-level error, got field %q", validationErr.Field)
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("name: [unterminated\n"))
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("syntax errors should not be reported as validation errors")
	}
}

func TestLoadReturnsIndependentValues(t *testing.T) {
	t.Parallel()

	path := writeDefinition(t, "svc.yaml", "name: svc\nversion: \"1\"\ndescription: first\n")

	first, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	*first.Description = "mutated"

	second, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if *second.Description != "first" {
		t.Fatalf("expected fresh value, got %q", *second.Description)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
