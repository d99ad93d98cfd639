package sensor

import "codeberg.org/mutker/zensensors/internal/errors"

// Acquisition errors. Every failure of a poll cycle carries exactly one of these.
const (
	ErrSpawnFailed                = errors.ErrorCode("sensors_spawn_failed")
	ErrCommandFailed              = errors.ErrorCode("sensors_command_failed")
	ErrCannotParseTelemetryOutput = errors.ErrorCode("sensors_cannot_parse_output")
	ErrUnsupportedCPUFamily       = errors.ErrorCode("sensors_unsupported_cpu_family")
	ErrMissingTelemetryField      = errors.ErrorCode("sensors_missing_telemetry_field")
	ErrCannotReadProcessorInfo    = errors.ErrorCode("sensors_cannot_read_processor_info")
)

func init() {
	errors.RegisterMessage(ErrSpawnFailed, "Failed to spawn sensors command")
	errors.RegisterMessage(ErrCommandFailed, "Sensors command failed")
	errors.RegisterMessage(ErrCannotParseTelemetryOutput, "Cannot parse sensors output")
	errors.RegisterMessage(ErrUnsupportedCPUFamily, "Unsupported CPU family")
	errors.RegisterMessage(ErrMissingTelemetryField, "Missing telemetry field")
	errors.RegisterMessage(ErrCannotReadProcessorInfo, "Cannot read processor info")
}

// IsAcquisitionError reports whether err carries one of the acquisition codes.
func IsAcquisitionError(err error) bool {
	switch errors.CodeOf(err) {
	case ErrSpawnFailed, ErrCommandFailed, ErrCannotParseTelemetryOutput,
		ErrUnsupportedCPUFamily, ErrMissingTelemetryField, ErrCannotReadProcessorInfo:
		return true
	default:
		return false
	}
}
