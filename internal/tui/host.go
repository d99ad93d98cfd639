package tui

import (
	"context"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

// Host describes the machine in the header line.
type Host struct {
	Hostname string
	Kernel   string
	CPUModel string
}

// DetectHost fills in whatever gopsutil can find; missing parts stay empty.
func DetectHost(ctx context.Context) Host {
	var h Host

	if info, err := host.InfoWithContext(ctx); err == nil {
		h.Hostname = info.Hostname
		h.Kernel = info.KernelVersion
	}

	if stats, err := cpu.InfoWithContext(ctx); err == nil && len(stats) > 0 {
		h.CPUModel = stats[0].ModelName
	}

	return h
}

func (h Host) String() string {
	s := h.Hostname
	if s == "" {
		s = "localhost"
	}
	if h.CPUModel != "" {
		s += " · " + h.CPUModel
	}
	if h.Kernel != "" {
		s += " · " + h.Kernel
	}

	return s
}
