package exitcodes

// Exit codes for the shredsafe binaries
// These codes form the operational contract with scripts and operators
const (
	Success         = 0 // All targets shredded successfully
	InvalidConfig   = 2 // Configuration file or flags invalid
	SafetyViolation = 3 // Safety validator blocked a target
	RuntimeError    = 4 // At least one target failed during shredding
)
