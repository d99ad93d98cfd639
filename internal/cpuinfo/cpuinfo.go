// Package cpuinfo reads per-core clock frequencies from /proc/cpuinfo.
package cpuinfo

import (
	"strconv"
	"strings"

	"codeberg.org/mutker/zensensors/internal/errors"
	"codeberg.org/mutker/zensensors/internal/sensor"
	"github.com/spf13/afero"
)

const (
	// DefaultPath is the processor information pseudo-file.
	DefaultPath = "/proc/cpuinfo"

	frequencyLabel = "cpu MHz"
	blockSeparator = "\n\n"
)

// Source reads core frequencies from a processor information file.
type Source struct {
	fs   afero.Fs
	path string
}

// Option configures a Source.
type Option func(*Source)

// WithFs reads the processor information through fs instead of the host filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *Source) {
		s.fs = fs
	}
}

// WithPath overrides the processor information path.
func WithPath(path string) Option {
	return func(s *Source) {
		s.path = path
	}
}

// New returns a Source reading DefaultPath from the OS filesystem.
func New(opts ...Option) *Source {
	s := &Source{
		fs:   afero.NewOsFs(),
		path: DefaultPath,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Fetch reads the whole file and returns one reading per block that has a
// parseable "cpu MHz" line. An empty result is not an error.
func (s *Source) Fetch() ([]sensor.CoreReading, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, errors.New().WrapWithData(sensor.ErrCannotReadProcessorInfo, err, s.path)
	}

	return Parse(string(data)), nil
}

// Parse extracts core frequencies from processor information text, in block order.
func Parse(text string) []sensor.CoreReading {
	blocks := strings.Split(text, blockSeparator)
	cores := make([]sensor.CoreReading, 0, len(blocks))

	for _, block := range blocks {
		mhz, ok := blockFrequency(block)
		if !ok {
			continue
		}
		cores = append(cores, sensor.CoreReading{FrequencyMHz: mhz})
	}

	return cores
}

// blockFrequency parses the first "cpu MHz" line of a block.
func blockFrequency(block string) (float64, bool) {
	for _, line := range strings.Split(block, "\n") {
		if !strings.HasPrefix(line, frequencyLabel) {
			continue
		}

		_, value, found := strings.Cut(line, ":")
		if !found {
			return 0, false
		}

		mhz, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, false
		}

		return mhz, true
	}

	return 0, false
}
