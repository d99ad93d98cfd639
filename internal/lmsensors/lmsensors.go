// Package lmsensors decodes the JSON emitted by `sensors -j` and extracts the
// CPU temperature record of supported processor families.
package lmsensors

import (
	"encoding/json"

	"codeberg.org/mutker/zensensors/internal/errors"
	"codeberg.org/mutker/zensensors/internal/sensor"
)

// Zen2DriverPrefix identifies the k10temp driver chips.
const Zen2DriverPrefix = "k10temp"

type zen2Channel struct {
	ref sensor.FieldRef
	set func(r *sensor.Zen2Reading, v float64)
}

var zen2Channels = []zen2Channel{
	{sensor.FieldRef{Outer: "Vcore", Inner: "in0_input"}, func(r *sensor.Zen2Reading, v float64) { r.VoltageCore = v }},
	{sensor.FieldRef{Outer: "Vsoc", Inner: "in1_input"}, func(r *sensor.Zen2Reading, v float64) { r.VoltageSoC = v }},
	{sensor.FieldRef{Outer: "Icore", Inner: "curr1_input"}, func(r *sensor.Zen2Reading, v float64) { r.CurrentCore = v }},
	{sensor.FieldRef{Outer: "Isoc", Inner: "curr2_input"}, func(r *sensor.Zen2Reading, v float64) { r.CurrentSoC = v }},
	{sensor.FieldRef{Outer: "Tdie", Inner: "temp1_input"}, func(r *sensor.Zen2Reading, v float64) { r.TempDie = v }},
	{sensor.FieldRef{Outer: "Tctl", Inner: "temp2_input"}, func(r *sensor.Zen2Reading, v float64) { r.TempCtl = v }},
	{sensor.FieldRef{Outer: "Tccd1", Inner: "temp3_input"}, func(r *sensor.Zen2Reading, v float64) { r.TempCCD1 = v }},
	{sensor.FieldRef{Outer: "Tccd2", Inner: "temp4_input"}, func(r *sensor.Zen2Reading, v float64) { r.TempCCD2 = v }},
}

// Zen2Fields lists the channels a k10temp device must report, in reading order.
func Zen2Fields() []sensor.FieldRef {
	refs := make([]sensor.FieldRef, len(zen2Channels))
	for i, ch := range zen2Channels {
		refs[i] = ch.ref
	}

	return refs
}

// Parse decodes raw `sensors -j` output into a DeviceMap.
func Parse(raw []byte) (*DeviceMap, error) {
	devices := &DeviceMap{}
	if err := json.Unmarshal(raw, devices); err != nil {
		return nil, errors.New().Wrap(sensor.ErrCannotParseTelemetryOutput, err)
	}

	return devices, nil
}

// Decode parses raw `sensors -j` output and returns the temperature record of
// the first k10temp device.
func Decode(raw []byte) (sensor.TemperatureReading, error) {
	devices, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	return FromDevices(devices)
}

// FromDevices extracts the temperature record from an already decoded map.
func FromDevices(devices *DeviceMap) (sensor.TemperatureReading, error) {
	_, dev, ok := devices.FindPrefix(Zen2DriverPrefix)
	if !ok {
		return nil, errors.New().WithData(sensor.ErrUnsupportedCPUFamily, devices.IDs())
	}

	reading, err := ParseZen2(dev)
	if err != nil {
		return nil, err
	}

	return reading, nil
}

// ParseZen2 reads the eight Zen2 channels from dev. The first channel that is
// absent, not an object, null or not a number fails the whole record.
func ParseZen2(dev Device) (sensor.Zen2Reading, error) {
	var reading sensor.Zen2Reading

	for _, ch := range zen2Channels {
		v, ok := channelValue(dev, ch.ref)
		if !ok {
			return sensor.Zen2Reading{}, errors.New().WithData(sensor.ErrMissingTelemetryField, ch.ref)
		}
		ch.set(&reading, v)
	}

	return reading, nil
}

func channelValue(dev Device, ref sensor.FieldRef) (float64, bool) {
	outer, ok := dev.Fields[ref.Outer]
	if !ok {
		return 0, false
	}

	var inputs map[string]json.RawMessage
	if err := json.Unmarshal(outer, &inputs); err != nil {
		return 0, false
	}

	inner, ok := inputs[ref.Inner]
	if !ok {
		return 0, false
	}

	var v *float64
	if err := json.Unmarshal(inner, &v); err != nil || v == nil {
		return 0, false
	}

	return *v, true
}
