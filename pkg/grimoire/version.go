// Package grimoire exposes build-level metadata for the grimoire tool.
package grimoire

// Version is the current grimoire release version.
const Version = "0.1.0"
