// Package rpp extracts FX chain presets from REAPER project files.
//
// A project is split into track chunks on the "<TRACK" marker. Each chunk's
// "<FXCHAIN" block is located by bracket-depth scanning, because the format
// nests blocks without indentation or length prefixes. Blocks that contain
// at least one plugin become standalone .RfxChain files named after the track.
//
// Two tracks whose names sanitize to the same token write the same file; the
// later track wins and both Preset values point at that path.
package rpp
