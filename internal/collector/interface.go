package collector

import (
	"context"

	"codeberg.org/mutker/zensensors/internal/sensor"
)

// Source produces one snapshot per call.
type Source interface {
	Fetch(ctx context.Context) (*sensor.Snapshot, error)
}

// Runner executes an external command to completion.
// A command that starts but exits non-zero is not an error at this level.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (CommandOutput, error)
}

// FrequencySource supplies per-core clock readings.
type FrequencySource interface {
	Fetch() ([]sensor.CoreReading, error)
}

// Decoder turns raw sensors output into a temperature record.
type Decoder func(raw []byte) (sensor.TemperatureReading, error)

// CommandOutput is what a finished command left behind.
type CommandOutput struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}
