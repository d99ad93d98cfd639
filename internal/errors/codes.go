package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"

	// Configuration errors
	ErrInvalidConfig ErrorCode = "invalid_configuration"
	ErrBindFlags     ErrorCode = "bind_flags_failed"
	ErrReadConfig    ErrorCode = "read_config_failed"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"
	ErrOpenLogFile     ErrorCode = "open_log_file_failed"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Application errors
	ErrInitApp  ErrorCode = "init_app_failed"
	ErrMainLoop ErrorCode = "main_loop_failed"
	ErrPresent  ErrorCode = "presenter_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrInvalidArgument: "Invalid argument provided",
	ErrInvalidConfig:   "Invalid configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrReadConfig:      "Failed to read config file",
	ErrInvalidLogLevel: "Invalid log level",
	ErrOpenLogFile:     "Failed to open log file",
	ErrInitFailed:      "Initialization failed",
	ErrShutdownFailed:  "Shutdown failed",
	ErrAlreadyRunning:  "Another instance is already running",
	ErrInitApp:         "Failed to initialize application",
	ErrMainLoop:        "Error in main loop",
	ErrPresent:         "Presenter exited with an error",
}

// RegisterMessage associates a human readable message with a package-level code.
// It is meant to be called from package init functions.
func RegisterMessage(code ErrorCode, msg string) {
	errorMessages[code] = msg
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
