package config

import (
	"strings"
	"testing"
)

func TestFormatValidationResultSimple_NoErrors(t *testing.T) {
	output := FormatValidationResultSimple(&ValidationResult{Valid: true})

	expected := "✓ Configuration is valid\n"
	if output != expected {
		t.Errorf("expected '%s', got '%s'", expected, output)
	}
}

func TestFormatValidationResultSimple_WithErrors(t *testing.T) {
	result := &ValidationResult{
		Errors: []ValidationError{
			{
				Type:   "error",
				Title:  "invalid package name",
				File:   "debdesk.yaml",
				Line:   4,
				Column: 9,
				Field:  "packages.extra.work.0",
				Value:  "Bad_Name",
				Help:   "package names use lowercase letters",
			},
		},
	}

	output := FormatValidationResultSimple(result)

	expectedParts := []string{
		"error: invalid package name",
		"--> debdesk.yaml:4:9",
		"| packages.extra.work.0: Bad_Name",
		"= help: package names use lowercase letters",
		"could not validate configuration due to 1 errors",
	}
	for _, part := range expectedParts {
		if !strings.Contains(output, part) {
			t.Errorf("expected output to contain %q, got:\n%s", part, output)
		}
	}
}

func TestFormatValidationResultSimple_WarningsOnly(t *testing.T) {
	result := &ValidationResult{
		Valid: true,
		Warnings: []ValidationError{
			{Type: "warning", Title: "unknown group label", File: "debdesk.yaml", Field: "packages.skip.0", Value: "games"},
		},
	}

	output := FormatValidationResultSimple(result)

	if !strings.Contains(output, "warning: unknown group label") {
		t.Errorf("expected warning header, got:\n%s", output)
	}
	if strings.Contains(output, "could not validate") {
		t.Errorf("warnings alone should not produce the failure summary, got:\n%s", output)
	}
}

func TestFormatQuickFixSimple(t *testing.T) {
	if got := FormatQuickFixSimple(&ValidationResult{}); got != "" {
		t.Errorf("expected no quick fixes, got %q", got)
	}

	result := &ValidationResult{}
	for i := 0; i < 5; i++ {
		result.Add(ValidationError{Type: "error", Title: "empty package name"})
	}

	output := FormatQuickFixSimple(result)
	if !strings.Contains(output, "Remove empty package entries") {
		t.Errorf("expected quick fix text, got:\n%s", output)
	}
	if !strings.Contains(output, "... and 2 more errors") {
		t.Errorf("expected truncation note, got:\n%s", output)
	}
}
