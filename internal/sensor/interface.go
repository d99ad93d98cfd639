// Package sensor holds the hardware telemetry model shared by the acquisition
// pipeline and its presenters.
package sensor

import "fmt"

// Snapshot is one complete set of readings produced by a single poll cycle.
// A Snapshot is never handed out partially populated.
type Snapshot struct {
	CPU      *CPUTelemetry
	Graphics *GraphicsTelemetry
	Others   []DeviceTelemetry
}

// CPUTelemetry combines per-core frequencies with the CPU's temperature record.
// Cores follow the order in which the frequency source listed them.
type CPUTelemetry struct {
	Cores       []CoreReading
	Temperature TemperatureReading
}

// CoreReading is the current clock of one logical core.
type CoreReading struct {
	FrequencyMHz float64
}

// TemperatureReading is implemented only by the CPU families this package
// understands. Zen2Reading is the sole variant.
type TemperatureReading interface {
	Family() string
	temperatureReading()
}

// Zen2Reading carries the k10temp channels reported for Zen2 CPUs, copied
// verbatim from the source (volts, amperes, degrees Celsius).
type Zen2Reading struct {
	VoltageCore float64
	VoltageSoC  float64
	CurrentCore float64
	CurrentSoC  float64
	TempDie     float64
	TempCtl     float64
	TempCCD1    float64
	TempCCD2    float64
}

func (Zen2Reading) Family() string { return "zen2" }

func (Zen2Reading) temperatureReading() {}

// GraphicsTelemetry is reserved for GPU readings.
type GraphicsTelemetry struct{}

// DeviceTelemetry is reserved for sensor chips outside the CPU and GPU.
type DeviceTelemetry struct{}

// FieldRef names one outer/inner channel of a sensors JSON device.
type FieldRef struct {
	Outer string
	Inner string
}

func (f FieldRef) String() string {
	return fmt.Sprintf("%s.%s", f.Outer, f.Inner)
}

// CommandFailure describes a sensor command that ran but did not succeed.
type CommandFailure struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (c CommandFailure) String() string {
	if c.Stderr == "" {
		return fmt.Sprintf("`%s` exited with status %d", c.Command, c.ExitCode)
	}

	return fmt.Sprintf("`%s` exited with status %d: %s", c.Command, c.ExitCode, c.Stderr)
}
