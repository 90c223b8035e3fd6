package main

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (unreadable or invalid config)
	ExitDataError    = 3 // Data error (unparseable bibliography, no matching record, bad pattern)
	ExitNotFound     = 4 // Query matched nothing where something was required
	ExitNetworkError = 5 // Remote lookup failed
)
