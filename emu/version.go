package emu

// Core identification reported to frontends.
const (
	Name    = "eDMG"
	Version = "0.3.0"
)
