package lmsensors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const adapterKey = "Adapter"

// Device is one sensor chip as reported by `sensors -j`.
type Device struct {
	Adapter string
	Fields  map[string]json.RawMessage
}

func (d *Device) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	adapter, ok := raw[adapterKey]
	if !ok {
		return fmt.Errorf("missing %q", adapterKey)
	}
	if err := json.Unmarshal(adapter, &d.Adapter); err != nil {
		return fmt.Errorf("%q: %w", adapterKey, err)
	}

	delete(raw, adapterKey)
	d.Fields = raw

	return nil
}

// DeviceMap maps chip identifiers to devices and remembers the order in which
// the chips appeared in the document.
type DeviceMap struct {
	ids     []string
	devices map[string]Device
}

func (m *DeviceMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}

	m.ids = nil
	m.devices = make(map[string]Device)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, _ := tok.(string)

		var dev Device
		if err := dec.Decode(&dev); err != nil {
			return fmt.Errorf("device %q: %w", id, err)
		}

		if _, seen := m.devices[id]; !seen {
			m.ids = append(m.ids, id)
		}
		m.devices[id] = dev
	}

	// closing brace
	_, err = dec.Token()

	return err
}

// Len returns the number of devices.
func (m *DeviceMap) Len() int {
	return len(m.ids)
}

// IDs returns the device identifiers in document order.
func (m *DeviceMap) IDs() []string {
	ids := make([]string, len(m.ids))
	copy(ids, m.ids)

	return ids
}

// Get returns the device registered under id.
func (m *DeviceMap) Get(id string) (Device, bool) {
	dev, ok := m.devices[id]
	return dev, ok
}

// FindPrefix returns the first device, in document order, whose identifier
// starts with prefix.
func (m *DeviceMap) FindPrefix(prefix string) (string, Device, bool) {
	for _, id := range m.ids {
		if strings.HasPrefix(id, prefix) {
			return id, m.devices[id], true
		}
	}

	return "", Device{}, false
}
