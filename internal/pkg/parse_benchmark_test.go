package pkg

import (
	"fmt"
	"strings"
	"testing"
)

// BenchmarkParseStatus benchmarks dpkg -s parsing for stanzas of varying size
func BenchmarkParseStatus(b *testing.B) {
	testCases := []struct {
		name        string
		extraFields int
	}{
		{"Minimal", 0},
		{"Typical", 20},
		{"Large", 200},
	}

	for _, tc := range testCases {
		b.Run(tc.name, func(b *testing.B) {
			data := []byte(generateStatusStanza("zsh", tc.extraFields))

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if !ParseStatus(data, "zsh").Installed() {
					b.Fatal("expected installed status")
				}
			}
		})
	}
}

// BenchmarkParseLspci benchmarks GPU classification over lspci -nn output
func BenchmarkParseLspci(b *testing.B) {
	for _, devices := range []int{10, 100} {
		b.Run(fmt.Sprintf("Devices%d", devices), func(b *testing.B) {
			output := generateLspciOutput(devices)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if len(ParseLspci(output)) != 1 {
					b.Fatal("expected one GPU")
				}
			}
		})
	}
}

func generateStatusStanza(name string, extraFields int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Package: %s\nStatus: install ok installed\nPriority: optional\n", name)
	for i := 0; i < extraFields; i++ {
		fmt.Fprintf(&sb, "X-Field-%d: value %d\n continuation line %d\n", i, i, i)
	}
	sb.WriteString("Version: 5.9-6\n")
	return sb.String()
}

func generateLspciOutput(devices int) string {
	var sb strings.Builder
	for i := 0; i < devices-1; i++ {
		fmt.Fprintf(&sb, "00:%02x.0 USB controller [0c03]: Intel Corporation Device [8086:%04x]\n", i%32, i)
	}
	sb.WriteString("01:00.0 VGA compatible controller [0300]: NVIDIA Corporation AD104 [GeForce RTX 4070] [10de:2786] (rev a1)\n")
	return sb.String()
}
