// Package collector assembles sensor snapshots from `sensors -j` and
// /proc/cpuinfo.
package collector

import (
	"context"
	"strings"
	"time"

	"codeberg.org/mutker/zensensors/internal/cpuinfo"
	"codeberg.org/mutker/zensensors/internal/errors"
	"codeberg.org/mutker/zensensors/internal/lmsensors"
	"codeberg.org/mutker/zensensors/internal/logger"
	"codeberg.org/mutker/zensensors/internal/sensor"
)

const (
	sensorsCommand = "sensors"
	sensorsJSONArg = "-j"

	maxStderrLen = 256
)

// CommandLine is the sensors invocation as it appears in errors and logs.
func CommandLine() string {
	return sensorsCommand + " " + sensorsJSONArg
}

// Collector builds snapshots. It holds no per-cycle state and may be reused.
type Collector struct {
	runner Runner
	freq   FrequencySource
	decode Decoder
	log    logger.Logger
}

type Option func(*Collector)

func WithRunner(r Runner) Option {
	return func(c *Collector) {
		c.runner = r
	}
}

func WithFrequencySource(f FrequencySource) Option {
	return func(c *Collector) {
		c.freq = f
	}
}

func WithDecoder(d Decoder) Option {
	return func(c *Collector) {
		c.decode = d
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Collector) {
		c.log = l
	}
}

// New returns a Collector that runs `sensors -j` from PATH and reads
// /proc/cpuinfo, unless overridden by opts.
func New(opts ...Option) *Collector {
	c := &Collector{
		runner: ExecRunner(),
		freq:   cpuinfo.New(),
		decode: lmsensors.Decode,
		log:    logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch runs one acquisition cycle. It either returns a complete snapshot or
// an error carrying one of the sensor acquisition codes.
func (c *Collector) Fetch(ctx context.Context) (*sensor.Snapshot, error) {
	errFactory := errors.New()
	start := time.Now()

	out, err := c.runner.Run(ctx, sensorsCommand, sensorsJSONArg)
	if err != nil {
		return nil, errFactory.WrapWithData(sensor.ErrSpawnFailed, err, CommandLine())
	}

	if out.ExitCode != 0 {
		return nil, errFactory.WithData(sensor.ErrCommandFailed, sensor.CommandFailure{
			Command:  CommandLine(),
			ExitCode: out.ExitCode,
			Stderr:   trimStderr(out.Stderr),
		})
	}

	temperature, err := c.decode(out.Stdout)
	if err != nil {
		return nil, err
	}

	cores, err := c.freq.Fetch()
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Int("cores", len(cores)).
		Str("family", temperature.Family()).
		Dur("elapsed", time.Since(start)).
		Msg("Sensor snapshot assembled")

	return &sensor.Snapshot{
		CPU: &sensor.CPUTelemetry{
			Cores:       cores,
			Temperature: temperature,
		},
		Graphics: nil,
		Others:   []sensor.DeviceTelemetry{},
	}, nil
}

func trimStderr(stderr []byte) string {
	s := strings.TrimSpace(string(stderr))
	if len(s) > maxStderrLen {
		s = s[:maxStderrLen] + "..."
	}

	return s
}
