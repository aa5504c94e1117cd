// Package jobfile builds and parses REAPER batch-convert job descriptors.
//
// A descriptor is a sequence of blocks. Each block lists its input files,
// one quoted path per line, followed by a blank line and a <CONFIG ... >
// section naming the FX chain, output folder and render options. REAPER
// requires the file list to precede the config section.
package jobfile
