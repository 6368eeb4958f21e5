package pkg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

const osReleasePath = "/etc/os-release"

// OSInfo describes the running distribution
type OSInfo struct {
	ID         string
	IDLike     []string
	VersionID  string
	Codename   string
	PrettyName string
	// Machine is the kernel machine name, e.g. x86_64 or aarch64.
	Machine string
}

// IsDebianFamily reports whether apt-based provisioning applies
func (o OSInfo) IsDebianFamily() bool {
	if o.ID == "debian" || o.ID == "ubuntu" {
		return true
	}
	return slices.Contains(o.IDLike, "debian") || slices.Contains(o.IDLike, "ubuntu")
}

// IsUbuntu reports whether this is Ubuntu or an Ubuntu derivative
func (o OSInfo) IsUbuntu() bool {
	return o.ID == "ubuntu" || slices.Contains(o.IDLike, "ubuntu")
}

var unameMachine = func() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(uts.Machine[:]), nil
}

// ParseOSRelease parses os-release(5) data
func ParseOSRelease(data []byte) OSInfo {
	var info OSInfo
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)

		switch key {
		case "ID":
			info.ID = value
		case "ID_LIKE":
			info.IDLike = strings.Fields(value)
		case "VERSION_ID":
			info.VersionID = value
		case "VERSION_CODENAME":
			info.Codename = value
		case "UBUNTU_CODENAME":
			if info.Codename == "" {
				info.Codename = value
			}
		case "PRETTY_NAME":
			info.PrettyName = value
		}
	}
	return info
}

// DetectOS reads /etc/os-release from fs. When the codename is missing it
// asks lsb_release. Non-Debian systems return ErrNotDebian.
func DetectOS(ctx context.Context, fs afero.Fs, runner Runner) (OSInfo, error) {
	data, err := afero.ReadFile(fs, osReleasePath)
	if err != nil {
		return OSInfo{}, fmt.Errorf("failed to read %s: %w", osReleasePath, err)
	}

	info := ParseOSRelease(data)
	if info.Codename == "" && runner != nil {
		if out, err := runner.Output(ctx, Command{Name: "lsb_release", Args: []string{"-cs"}}); err == nil {
			info.Codename = strings.TrimSpace(string(out))
		}
	}
	if machine, err := unameMachine(); err == nil {
		info.Machine = machine
	}

	if !info.IsDebianFamily() {
		return info, fmt.Errorf("%w (found %s)", ErrNotDebian, info.PrettyName)
	}
	return info, nil
}
