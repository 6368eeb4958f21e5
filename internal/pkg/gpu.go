package pkg

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bashfulrobot/debdesk/internal/config"
)

// gpuDetectTimeout bounds lspci and ubuntu-drivers
const gpuDetectTimeout = 15 * time.Second

// GPUVendor identifies a graphics vendor
type GPUVendor int

const (
	GPUVendorOther GPUVendor = iota
	GPUVendorNvidia
	GPUVendorAMD
	GPUVendorIntel
)

func (v GPUVendor) String() string {
	switch v {
	case GPUVendorNvidia:
		return "NVIDIA"
	case GPUVendorAMD:
		return "AMD"
	case GPUVendorIntel:
		return "Intel"
	default:
		return "other"
	}
}

// GPU is one display controller reported by lspci
type GPU struct {
	Slot   string
	Name   string
	Vendor GPUVendor
}

var (
	pciIDPattern     = regexp.MustCompile(`\[([0-9a-f]{4}):[0-9a-f]{4}\]`)
	displayClasses   = []string{"VGA compatible controller", "3D controller", "Display controller"}
	driverPkgPattern = regexp.MustCompile(`^nvidia-driver-(\d+)$`)
)

// ParseLspci extracts display controllers from lspci -nn output
func ParseLspci(output string) []GPU {
	var gpus []GPU
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		isDisplay := false
		for _, class := range displayClasses {
			if strings.Contains(line, class) {
				isDisplay = true
				break
			}
		}
		if !isDisplay {
			continue
		}

		slot, rest, _ := strings.Cut(line, " ")
		name := rest
		if _, after, ok := strings.Cut(rest, "]: "); ok {
			name = after
		}

		gpu := GPU{Slot: slot, Name: name, Vendor: GPUVendorOther}
		// The vendor id is the last [vvvv:dddd] pair on the line
		if ids := pciIDPattern.FindAllStringSubmatch(line, -1); len(ids) > 0 {
			switch ids[len(ids)-1][1] {
			case "10de":
				gpu.Vendor = GPUVendorNvidia
			case "1002":
				gpu.Vendor = GPUVendorAMD
			case "8086":
				gpu.Vendor = GPUVendorIntel
			}
		}
		gpus = append(gpus, gpu)
	}
	return gpus
}

// ParseUbuntuDrivers picks the NVIDIA driver package from
// "ubuntu-drivers devices" output: the one marked recommended, otherwise the
// highest-numbered desktop driver. Empty when none is listed.
func ParseUbuntuDrivers(output string) string {
	best, bestVersion := "", -1
	for _, line := range strings.Split(output, "\n") {
		_, value, ok := strings.Cut(line, ":")
		if !ok || !strings.HasPrefix(strings.TrimSpace(line), "driver") {
			continue
		}
		fields := strings.Fields(value)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if strings.Contains(value, "recommended") && strings.HasPrefix(name, "nvidia-driver") {
			return name
		}
		m := driverPkgPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if v, err := strconv.Atoi(m[1]); err == nil && v > bestVersion {
			best, bestVersion = name, v
		}
	}
	return best
}

// GPUDetector finds GPUs and the matching driver package
type GPUDetector struct {
	runner Runner
}

// NewGPUDetector creates a detector
func NewGPUDetector(runner Runner) *GPUDetector {
	return &GPUDetector{runner: runner}
}

// Detect returns the hardware input for preference defaults. Missing tools
// are not errors; they just mean nothing was detected.
func (d *GPUDetector) Detect(ctx context.Context, osInfo OSInfo) config.Hardware {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, gpuDetectTimeout)
		defer cancel()
	}

	hw := config.Hardware{NvidiaDriver: config.DefaultNvidiaDriver}

	out, err := d.runner.Output(ctx, Command{Name: "lspci", Args: []string{"-nn"}})
	if err != nil {
		return hw
	}
	for _, gpu := range ParseLspci(string(out)) {
		if gpu.Vendor == GPUVendorNvidia {
			hw.HasNvidia = true
			break
		}
	}
	if !hw.HasNvidia || !osInfo.IsUbuntu() {
		return hw
	}

	if _, err := d.runner.LookPath("ubuntu-drivers"); err != nil {
		return hw
	}
	out, err = d.runner.Output(ctx, Command{Name: "ubuntu-drivers", Args: []string{"devices"}})
	if err != nil {
		return hw
	}
	if driver := ParseUbuntuDrivers(string(out)); driver != "" {
		hw.NvidiaDriver = driver
	}
	return hw
}
