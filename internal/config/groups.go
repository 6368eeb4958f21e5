package config

import (
	"slices"
	"sort"
)

// ResolveGroups returns the package groups to install for prefs, in run
// order, with the config file's extra and skip overrides applied. cfg may be
// nil.
func ResolveGroups(prefs Preferences, cfg *Config) []PackageGroup {
	groups := []PackageGroup{
		{Label: GroupCore, Packages: copyPackages(corePackages), Policy: Strict},
	}
	if prefs.InstallWM {
		groups = append(groups, PackageGroup{Label: GroupWindowManager, Packages: copyPackages(windowManagerPackages), Policy: Strict})
	}
	groups = append(groups,
		PackageGroup{Label: GroupUI, Packages: copyPackages(uiPackages), Policy: Strict},
		PackageGroup{Label: GroupFileManager, Packages: copyPackages(fileManagerPackages), Policy: Strict},
		PackageGroup{Label: GroupAudio, Packages: copyPackages(audioPackages), Policy: Strict},
		PackageGroup{Label: GroupUtilities, Packages: copyPackages(utilityPackages), Policy: Strict},
		PackageGroup{Label: GroupTerminalTools, Packages: copyPackages(terminalToolPackages), Policy: Strict},
		PackageGroup{Label: GroupFonts, Packages: copyPackages(fontPackages), Policy: BestEffort},
		PackageGroup{Label: GroupBuildTools, Packages: copyPackages(buildToolPackages), Policy: Strict},
		PackageGroup{Label: GroupTheme, Packages: copyPackages(themePackages), Policy: BestEffort},
	)
	if prefs.InstallShell {
		groups = append(groups, PackageGroup{Label: GroupShell, Packages: copyPackages(shellPackages), Policy: Strict})
	}
	if prefs.InstallNvidia {
		driver := prefs.NvidiaDriver
		if driver == "" {
			driver = DefaultNvidiaDriver
		}
		groups = append(groups, PackageGroup{Label: GroupNvidia, Packages: []string{driver}, Policy: Strict})
	}
	if prefs.InstallCUDA {
		groups = append(groups, PackageGroup{Label: GroupCUDA, Packages: copyPackages(cudaPackages), Policy: BestEffort})
	}
	if prefs.InstallOptional {
		groups = append(groups, PackageGroup{Label: GroupOptional, Packages: copyPackages(optionalPackages), Policy: BestEffort})
	}

	if cfg == nil {
		return groups
	}
	return applyOverrides(groups, cfg.Packages)
}

func applyOverrides(groups []PackageGroup, overrides PackageOverrides) []PackageGroup {
	known := make(map[string]int, len(groups))
	for i, g := range groups {
		known[g.Label] = i
	}

	// Sorted so custom groups come out in a stable order
	labels := make([]string, 0, len(overrides.Extra))
	for label := range overrides.Extra {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		extra := overrides.Extra[label]
		if i, ok := known[label]; ok {
			groups[i].Packages = appendUnique(groups[i].Packages, extra...)
			continue
		}
		groups = append(groups, PackageGroup{
			Label:    label,
			Packages: appendUnique(nil, extra...),
			Policy:   BestEffort,
		})
	}

	if len(overrides.Skip) == 0 {
		return groups
	}
	kept := groups[:0]
	for _, g := range groups {
		if slices.Contains(overrides.Skip, g.Label) {
			continue
		}
		kept = append(kept, g)
	}
	return kept
}

func appendUnique(dst []string, packages ...string) []string {
	if dst == nil {
		dst = []string{}
	}
	for _, p := range packages {
		if !slices.Contains(dst, p) {
			dst = append(dst, p)
		}
	}
	return dst
}

// KnownGroupLabels lists every built-in group label
func KnownGroupLabels() []string {
	return []string{
		GroupCore, GroupWindowManager, GroupUI, GroupFileManager, GroupAudio,
		GroupUtilities, GroupTerminalTools, GroupFonts, GroupBuildTools,
		GroupTheme, GroupShell, GroupNvidia, GroupCUDA, GroupOptional,
	}
}
