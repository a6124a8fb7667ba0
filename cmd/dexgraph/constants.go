package main

// Default limits for CLI commands.
const (
	DefaultSearchLimit = 5
	DefaultLoadLimit   = 0 // all entries
)
