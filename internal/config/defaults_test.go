package config

import (
	"reflect"
	"testing"
)

func TestGetAptFlags(t *testing.T) {
	tests := []struct {
		name     string
		override []string
		expected []string
	}{
		{
			name:     "built-in defaults",
			override: nil,
			expected: []string{"-y", "-q", "--no-install-recommends"},
		},
		{
			name:     "override replaces defaults",
			override: []string{"-y", "--install-recommends"},
			expected: []string{"-y", "--install-recommends"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := GetAptFlags(tt.override)
			if !reflect.DeepEqual(flags, tt.expected) {
				t.Errorf("GetAptFlags(%v) = %v, expected %v", tt.override, flags, tt.expected)
			}
		})
	}
}

func TestGetAptFlags_ReturnsCopy(t *testing.T) {
	flags := GetAptFlags(nil)
	flags[0] = "--modified"

	again := GetAptFlags(nil)
	if again[0] != "-y" {
		t.Errorf("GetAptFlags should return a copy, defaults were modified: %v", again)
	}
}

func TestBuiltInGroupsHaveValidNames(t *testing.T) {
	lists := map[string][]string{
		GroupCore:          corePackages,
		GroupWindowManager: windowManagerPackages,
		GroupUI:            uiPackages,
		GroupFileManager:   fileManagerPackages,
		GroupAudio:         audioPackages,
		GroupUtilities:     utilityPackages,
		GroupTerminalTools: terminalToolPackages,
		GroupFonts:         fontPackages,
		GroupBuildTools:    buildToolPackages,
		GroupTheme:         themePackages,
		GroupShell:         shellPackages,
		GroupCUDA:          cudaPackages,
		GroupOptional:      optionalPackages,
	}

	for label, packages := range lists {
		if len(packages) == 0 {
			t.Errorf("built-in group %s is empty", label)
		}
		for _, name := range packages {
			if !ValidPackageName(name) {
				t.Errorf("group %s contains invalid package name %q", label, name)
			}
		}
	}
}
