package tui

import (
	"testing"
	"time"

	"codeberg.org/mutker/zensensors/internal/errors"
	"codeberg.org/mutker/zensensors/internal/poller"
	"codeberg.org/mutker/zensensors/internal/sensor"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *sensor.Snapshot {
	return &sensor.Snapshot{
		CPU: &sensor.CPUTelemetry{
			Cores: []sensor.CoreReading{{FrequencyMHz: 3800}, {FrequencyMHz: 2199.54}},
			Temperature: sensor.Zen2Reading{
				VoltageCore: 1.25,
				VoltageSoC:  1.05,
				CurrentCore: 10,
				CurrentSoC:  3,
				TempDie:     45,
				TempCtl:     47,
				TempCCD1:    44,
				TempCCD2:    43,
			},
		},
		Others: []sensor.DeviceTelemetry{},
	}
}

func TestCoreRows(t *testing.T) {
	rows := CoreRows(testSnapshot().CPU.Cores)

	assert.Equal(t, []table.Row{{"0", "3800.0"}, {"1", "2199.5"}}, rows)
}

func TestTemperatureRows(t *testing.T) {
	rows := TemperatureRows(testSnapshot().CPU.Temperature)

	require.Len(t, rows, 8)
	assert.Equal(t, table.Row{"Vcore", "1.250", "V"}, rows[0])
	assert.Equal(t, table.Row{"Isoc", "3.00", "A"}, rows[3])
	assert.Equal(t, table.Row{"Tccd2", "43.0", "°C"}, rows[7])
	assert.Nil(t, TemperatureRows(nil))
}

func TestUpdateWithSnapshot(t *testing.T) {
	results := make(chan poller.Result, 1)
	m := New(results, Host{Hostname: "zen", CPUModel: "AMD Ryzen 9 3900X"})
	assert.Contains(t, m.View(), "Waiting for first reading")

	next, cmd := m.Update(resultMsg(poller.Result{Snapshot: testSnapshot(), At: time.Now()}))
	require.NotNil(t, cmd)

	view := next.View()
	assert.Contains(t, view, "zen")
	assert.Contains(t, view, "AMD Ryzen 9 3900X")
	assert.Contains(t, view, "3800.0")
	assert.Contains(t, view, "Tdie")
	assert.Contains(t, view, "polls: 1")
	assert.NotContains(t, view, "Waiting for first reading")
}

func TestUpdateWithErrorKeepsLastSnapshot(t *testing.T) {
	m := New(make(chan poller.Result), Host{})

	next, _ := m.Update(resultMsg(poller.Result{Snapshot: testSnapshot()}))
	next, _ = next.Update(resultMsg(poller.Result{Err: errors.New().New(sensor.ErrUnsupportedCPUFamily)}))

	view := next.View()
	assert.Contains(t, view, string(sensor.ErrUnsupportedCPUFamily))
	assert.Contains(t, view, "Unsupported CPU family")
	assert.Contains(t, view, "3800.0")
	assert.Contains(t, view, "polls: 2")
}

func TestWaitForResult(t *testing.T) {
	results := make(chan poller.Result, 1)
	results <- poller.Result{Snapshot: testSnapshot()}

	msg := waitForResult(results)()
	res, ok := msg.(resultMsg)
	require.True(t, ok)
	assert.NotNil(t, res.Snapshot)

	close(results)
	assert.Equal(t, closedMsg{}, waitForResult(results)())
}

func TestQuit(t *testing.T) {
	m := New(make(chan poller.Result), Host{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = m.Update(closedMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestHostString(t *testing.T) {
	assert.Equal(t, "localhost", Host{}.String())
	assert.Equal(t, "zen · AMD Ryzen 9 3900X · 6.1.0", Host{Hostname: "zen", CPUModel: "AMD Ryzen 9 3900X", Kernel: "6.1.0"}.String())
}
