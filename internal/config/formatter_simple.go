package config

import (
	"fmt"
	"strings"
)

// FormatValidationResultSimple renders findings in a compiler-like layout
func FormatValidationResultSimple(result *ValidationResult) string {
	if len(result.Errors) == 0 && len(result.Warnings) == 0 {
		return "✓ Configuration is valid\n"
	}

	var output strings.Builder

	for i, err := range result.Errors {
		if i > 0 {
			output.WriteString("\n")
		}
		output.WriteString(formatFinding("error", err))
	}

	for i, warning := range result.Warnings {
		if len(result.Errors) > 0 || i > 0 {
			output.WriteString("\n")
		}
		output.WriteString(formatFinding("warning", warning))
	}

	if len(result.Errors) > 0 {
		output.WriteString(fmt.Sprintf("\nError: could not validate configuration due to %d errors\n", len(result.Errors)))
	}

	return output.String()
}

func formatFinding(kind string, err ValidationError) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("%s: %s\n", kind, err.Title))

	if err.File != "" && err.Line > 0 {
		output.WriteString(fmt.Sprintf("  --> %s:%d:%d\n", err.File, err.Line, err.Column))
	} else if err.File != "" {
		output.WriteString(fmt.Sprintf("  --> %s\n", err.File))
	}

	if err.Field != "" {
		output.WriteString("   |\n")
		if err.Value != "" {
			output.WriteString(fmt.Sprintf("   | %s: %s\n", err.Field, err.Value))
		} else {
			output.WriteString(fmt.Sprintf("   | %s\n", err.Field))
		}
		output.WriteString("   |\n")
	}

	if err.Message != "" {
		output.WriteString(fmt.Sprintf("   = %s\n", err.Message))
	}
	if err.Help != "" {
		output.WriteString(fmt.Sprintf("   = help: %s\n", err.Help))
	}

	return output.String()
}

// FormatQuickFixSimple lists one-line fixes for the first few errors
func FormatQuickFixSimple(result *ValidationResult) string {
	if len(result.Errors) == 0 {
		return ""
	}

	var output strings.Builder
	output.WriteString("\nQuick fixes:\n")

	for i, err := range result.Errors {
		if i >= 3 {
			output.WriteString(fmt.Sprintf("  ... and %d more errors\n", len(result.Errors)-3))
			break
		}
		if fix := quickFix(err); fix != "" {
			output.WriteString(fmt.Sprintf("  • %s\n", fix))
		}
	}

	return output.String()
}

func quickFix(err ValidationError) string {
	switch {
	case strings.Contains(err.Title, "invalid package name"):
		return fmt.Sprintf("Rename %q to a valid Debian package name in %s", err.Value, err.Field)
	case strings.Contains(err.Title, "empty package name"):
		return "Remove empty package entries from your lists"
	case strings.Contains(err.Title, "invalid empty group policy"):
		return `Set empty_group_policy to "fail" or "succeed"`
	case strings.Contains(err.Title, "font size"):
		return "Set terminal.font_size to 11"
	default:
		return err.Help
	}
}
