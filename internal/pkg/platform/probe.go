package platform

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"
)

// Environment describes what the host can do. It drives which capability
// providers the enlightenment registry selects.
type Environment struct {
	GOOS            string   `json:"goos"`
	GOARCH          string   `json:"goarch"`
	NumCPU          int      `json:"num_cpu"`
	CanSpawnThreads bool     `json:"can_spawn_threads"`
	CanPinThreads   bool     `json:"can_pin_threads"`
	TaskPool        bool     `json:"task_pool"`
	CPUFeatures     []string `json:"cpu_features,omitempty"`
	// Portable is set when probing failed and only defaults may be used.
	Portable bool `json:"portable"`
}

// ProbeOptions restricts what HostProbe reports.
type ProbeOptions struct {
	AllowThreads   bool
	PinThreads     bool
	EnableTaskPool bool
}

// Probe discovers the host environment.
type Probe func() (Environment, error)

// HostProbe inspects the running process.
func HostProbe(opts ProbeOptions) Probe {
	return func() (Environment, error) {
		n := runtime.NumCPU()
		if n < 1 {
			return Environment{}, fmt.Errorf("host reported %d CPUs", n)
		}
		return Environment{
			GOOS:            runtime.GOOS,
			GOARCH:          runtime.GOARCH,
			NumCPU:          n,
			CanSpawnThreads: opts.AllowThreads,
			CanPinThreads:   opts.AllowThreads && opts.PinThreads && pinSupported && n > 1,
			TaskPool:        opts.EnableTaskPool,
			CPUFeatures:     cpuFeatures(),
		}, nil
	}
}

// StaticProbe always returns env and err.
func StaticProbe(env Environment, err error) Probe {
	return func() (Environment, error) {
		return env, err
	}
}

// Portable is the environment assumed when probing fails: one CPU and none of
// the optional capabilities.
func Portable() Environment {
	return Environment{
		GOOS:     runtime.GOOS,
		GOARCH:   runtime.GOARCH,
		NumCPU:   1,
		Portable: true,
	}
}

func cpuFeatures() []string {
	var out []string
	add := func(ok bool, name string) {
		if ok {
			out = append(out, name)
		}
	}
	add(cpu.X86.HasSSE42, "sse4.2")
	add(cpu.X86.HasAVX2, "avx2")
	add(cpu.X86.HasAVX512F, "avx512f")
	add(cpu.ARM64.HasASIMD, "asimd")
	add(cpu.ARM64.HasATOMICS, "atomics")
	return out
}
