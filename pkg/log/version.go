package log

// Version constants for the log module, checked by the helmsman facade's
// module compatibility validation.
const (
	// Version is the current version of the log module.
	Version = "1.0.0"

	// MinCompatibleVersion is the oldest version this module is compatible with.
	MinCompatibleVersion = "1.0.0"
)
