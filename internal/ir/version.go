package ir

// Version constants stamped on logged runs.
const (
	// IRVersion is the program schema version.
	IRVersion = "1"

	// EngineVersion is the stabsim engine version.
	EngineVersion = "0.1.0"
)
