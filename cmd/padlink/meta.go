package main

// Version is stamped by the build via -ldflags.
var Version = "dev"

// Description returns the one-line program description shown in --help.
func Description() string {
	return "Relay controller state to Switch-controller firmware over serial (" + Version + ")"
}
