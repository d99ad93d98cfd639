package collector_test

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"codeberg.org/mutker/zensensors/internal/collector"
	"codeberg.org/mutker/zensensors/internal/cpuinfo"
	"codeberg.org/mutker/zensensors/internal/errors"
	"codeberg.org/mutker/zensensors/internal/logger"
	"codeberg.org/mutker/zensensors/internal/sensor"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const zen2Output = `{"k10temp-isa-0000":{"Adapter":"ISA adapter","Vcore":{"in0_input":1.25},"Vsoc":{"in1_input":1.05},"Icore":{"curr1_input":10.0},"Isoc":{"curr2_input":3.0},"Tdie":{"temp1_input":45.0},"Tctl":{"temp2_input":47.0},"Tccd1":{"temp3_input":44.0},"Tccd2":{"temp4_input":43.0}}}`

const twoBlocks = "processor\t: 0\ncpu MHz\t\t: 3800.000\n\nprocessor\t: 1\ncpu MHz\t\t: 3800.000\n"

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) (collector.CommandOutput, error) {
	ret := m.Called(ctx, name, args)
	return ret.Get(0).(collector.CommandOutput), ret.Error(1)
}

type mockFrequencySource struct {
	mock.Mock
}

func (m *mockFrequencySource) Fetch() ([]sensor.CoreReading, error) {
	ret := m.Called()
	cores, _ := ret.Get(0).([]sensor.CoreReading)
	return cores, ret.Error(1)
}

func newRunner(out collector.CommandOutput, err error) *mockRunner {
	r := &mockRunner{}
	r.On("Run", mock.Anything, "sensors", []string{"-j"}).Return(out, err)

	return r
}

func cpuinfoFs(t *testing.T, content string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, cpuinfo.DefaultPath, []byte(content), 0o444))

	return fs
}

func quietLogger() logger.Logger {
	return logger.New(&bytes.Buffer{})
}

func TestFetchEndToEnd(t *testing.T) {
	runner := newRunner(collector.CommandOutput{Stdout: []byte(zen2Output)}, nil)
	c := collector.New(
		collector.WithRunner(runner),
		collector.WithFrequencySource(cpuinfo.New(cpuinfo.WithFs(cpuinfoFs(t, twoBlocks)))),
		collector.WithLogger(quietLogger()),
	)

	snapshot, err := c.Fetch(context.Background())
	require.NoError(t, err)
	runner.AssertExpectations(t)

	require.NotNil(t, snapshot.CPU)
	assert.Nil(t, snapshot.Graphics)
	assert.NotNil(t, snapshot.Others)
	assert.Empty(t, snapshot.Others)

	assert.Equal(t, []sensor.CoreReading{{FrequencyMHz: 3800.0}, {FrequencyMHz: 3800.0}}, snapshot.CPU.Cores)
	assert.Equal(t, sensor.Zen2Reading{
		VoltageCore: 1.25,
		VoltageSoC:  1.05,
		CurrentCore: 10.0,
		CurrentSoC:  3.0,
		TempDie:     45.0,
		TempCtl:     47.0,
		TempCCD1:    44.0,
		TempCCD2:    43.0,
	}, snapshot.CPU.Temperature)
}

func TestFetchEmptyCoresIsNotAnError(t *testing.T) {
	freq := &mockFrequencySource{}
	freq.On("Fetch").Return([]sensor.CoreReading{}, nil)

	c := collector.New(
		collector.WithRunner(newRunner(collector.CommandOutput{Stdout: []byte(zen2Output)}, nil)),
		collector.WithFrequencySource(freq),
		collector.WithLogger(quietLogger()),
	)

	snapshot, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot.CPU.Cores)
}

func TestFetchSpawnFailed(t *testing.T) {
	freq := &mockFrequencySource{}
	c := collector.New(
		collector.WithRunner(newRunner(collector.CommandOutput{}, exec.ErrNotFound)),
		collector.WithFrequencySource(freq),
		collector.WithLogger(quietLogger()),
	)

	snapshot, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Nil(t, snapshot)
	assert.True(t, errors.HasCode(err, sensor.ErrSpawnFailed))
	assert.ErrorIs(t, err, exec.ErrNotFound)

	var appErr errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "sensors -j", appErr.GetData())
	freq.AssertNotCalled(t, "Fetch")
}

func TestFetchCommandFailed(t *testing.T) {
	freq := &mockFrequencySource{}
	decoded := false
	c := collector.New(
		collector.WithRunner(newRunner(collector.CommandOutput{
			ExitCode: 1,
			Stdout:   []byte(zen2Output),
			Stderr:   []byte("No sensors found!\n"),
		}, nil)),
		collector.WithFrequencySource(freq),
		collector.WithDecoder(func([]byte) (sensor.TemperatureReading, error) {
			decoded = true
			return sensor.Zen2Reading{}, nil
		}),
		collector.WithLogger(quietLogger()),
	)

	snapshot, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Nil(t, snapshot)
	assert.True(t, errors.HasCode(err, sensor.ErrCommandFailed))
	assert.False(t, decoded, "decode must not run after a failed command")
	freq.AssertNotCalled(t, "Fetch")

	var appErr errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, sensor.CommandFailure{
		Command:  "sensors -j",
		ExitCode: 1,
		Stderr:   "No sensors found!",
	}, appErr.GetData())
}

func TestFetchDecodeErrorPropagates(t *testing.T) {
	freq := &mockFrequencySource{}
	c := collector.New(
		collector.WithRunner(newRunner(collector.CommandOutput{Stdout: []byte(`{"coretemp-isa-0000":{"Adapter":"ISA adapter"}}`)}, nil)),
		collector.WithFrequencySource(freq),
		collector.WithLogger(quietLogger()),
	)

	_, err := c.Fetch(context.Background())
	assert.True(t, errors.HasCode(err, sensor.ErrUnsupportedCPUFamily))
	freq.AssertNotCalled(t, "Fetch")
}

func TestFetchCannotReadProcessorInfo(t *testing.T) {
	c := collector.New(
		collector.WithRunner(newRunner(collector.CommandOutput{Stdout: []byte(zen2Output)}, nil)),
		collector.WithFrequencySource(cpuinfo.New(cpuinfo.WithFs(afero.NewMemMapFs()))),
		collector.WithLogger(quietLogger()),
	)

	snapshot, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Nil(t, snapshot)
	assert.True(t, errors.HasCode(err, sensor.ErrCannotReadProcessorInfo))
	assert.True(t, sensor.IsAcquisitionError(err))
}

func TestExecRunnerExitCode(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	out, err := collector.ExecRunner().Run(context.Background(), "sh", "-c", "echo out; echo err >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, out.ExitCode)
	assert.Equal(t, "out\n", string(out.Stdout))
	assert.Equal(t, "err\n", string(out.Stderr))
}

func TestExecRunnerSpawnFailure(t *testing.T) {
	_, err := collector.ExecRunner().Run(context.Background(), "zensensors-no-such-binary")
	require.Error(t, err)
}
