package simt

import (
	"strings"

	"golang.org/x/sys/cpu"
)

// CPUFeatures tracks available CPU instruction set extensions
type CPUFeatures struct {
	HasSSE4    bool
	HasAVX     bool
	HasAVX2    bool
	HasAVX512F bool
	HasFMA     bool
	HasNEON    bool
}

// Global CPU feature detection
var cpuFeatures CPUFeatures

func init() {
	detectCPUFeatures()
}

// detectCPUFeatures populates the global cpuFeatures struct
func detectCPUFeatures() {
	cpuFeatures = CPUFeatures{
		HasSSE4:    cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX:     cpu.X86.HasAVX,
		HasAVX2:    cpu.X86.HasAVX2,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasFMA:     cpu.X86.HasFMA,
		HasNEON:    cpu.ARM64.HasASIMD,
	}
}

// Features returns the detected CPU features.
func Features() CPUFeatures {
	return cpuFeatures
}

// simdFeatures lists the detected SIMD extensions for device reporting.
func simdFeatures() string {
	var fs []string
	if cpuFeatures.HasAVX512F {
		fs = append(fs, "AVX-512")
	} else if cpuFeatures.HasAVX2 {
		fs = append(fs, "AVX2")
	} else if cpuFeatures.HasAVX {
		fs = append(fs, "AVX")
	} else if cpuFeatures.HasSSE4 {
		fs = append(fs, "SSE4")
	}
	if cpuFeatures.HasFMA {
		fs = append(fs, "FMA")
	}
	if cpuFeatures.HasNEON {
		fs = append(fs, "NEON")
	}
	return strings.Join(fs, "+")
}
