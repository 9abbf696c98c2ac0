package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing or invalid config.yaml)
	ExitDataError   = 3 // Data error (corpus unreadable or unwritable, index build failure)
	ExitNotFound    = 4 // Requested paper not in the corpus
)
