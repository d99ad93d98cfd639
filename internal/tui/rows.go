package tui

import (
	"strconv"

	"codeberg.org/mutker/zensensors/internal/sensor"
	"github.com/charmbracelet/bubbles/table"
)

// CoreRows renders one row per core, numbered in discovery order.
func CoreRows(cores []sensor.CoreReading) []table.Row {
	rows := make([]table.Row, len(cores))
	for i, core := range cores {
		rows[i] = table.Row{strconv.Itoa(i), strconv.FormatFloat(core.FrequencyMHz, 'f', 1, 64)}
	}

	return rows
}

// TemperatureRows renders the channels of a temperature record with units.
func TemperatureRows(reading sensor.TemperatureReading) []table.Row {
	switch r := reading.(type) {
	case sensor.Zen2Reading:
		return []table.Row{
			{"Vcore", formatValue(r.VoltageCore, 3), "V"},
			{"Vsoc", formatValue(r.VoltageSoC, 3), "V"},
			{"Icore", formatValue(r.CurrentCore, 2), "A"},
			{"Isoc", formatValue(r.CurrentSoC, 2), "A"},
			{"Tdie", formatValue(r.TempDie, 1), "°C"},
			{"Tctl", formatValue(r.TempCtl, 1), "°C"},
			{"Tccd1", formatValue(r.TempCCD1, 1), "°C"},
			{"Tccd2", formatValue(r.TempCCD2, 1), "°C"},
		}
	default:
		return nil
	}
}

func formatValue(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
