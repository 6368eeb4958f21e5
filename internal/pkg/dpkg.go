package pkg

import (
	"bufio"
	"bytes"
	"strings"
)

// Stanza is one paragraph of a Debian control file, such as the output of
// dpkg -s. Field names keep their original case.
type Stanza map[string]string

// ParseStanzas splits control-file data into paragraphs. Continuation lines
// are folded into the previous field.
func ParseStanzas(data []byte) []Stanza {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var stanzas []Stanza
	current := Stanza{}
	lastField := ""

	flush := func() {
		if len(current) > 0 {
			stanzas = append(stanzas, current)
		}
		current = Stanza{}
		lastField = ""
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if lastField != "" {
				current[lastField] += "\n" + strings.TrimSpace(line)
			}
			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		lastField = strings.TrimSpace(field)
		current[lastField] = strings.TrimSpace(value)
	}
	flush()

	return stanzas
}

// PackageStatus is the parsed Status field of an installed-package record
type PackageStatus struct {
	Want  string
	Flag  string
	State string
}

// Installed reports the fully configured state dpkg prints as
// "install ok installed"
func (s PackageStatus) Installed() bool {
	return s.Want == "install" && s.Flag == "ok" && s.State == "installed"
}

// ParseStatus reads the Status field of dpkg -s output for pkg. Missing or
// malformed records yield the zero status.
func ParseStatus(data []byte, pkg string) PackageStatus {
	for _, stanza := range ParseStanzas(data) {
		if name, ok := stanza["Package"]; ok && name != pkg {
			continue
		}
		fields := strings.Fields(stanza["Status"])
		if len(fields) != 3 {
			continue
		}
		return PackageStatus{Want: fields[0], Flag: fields[1], State: fields[2]}
	}
	return PackageStatus{}
}
