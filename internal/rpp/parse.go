package rpp

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	trackMarker   = "<TRACK"
	fxChainMarker = "<FXCHAIN"
	presetHeader  = "<REAPER_FXCHAIN"
)

var (
	quotedNamePattern = regexp.MustCompile(`(?m)^\s*NAME\s+"([^"]*)"`)
	bareNamePattern   = regexp.MustCompile(`(?m)^\s*NAME\s+([^\s"]+)\s*$`)
	pluginPattern     = regexp.MustCompile(`(?i)<(FX |VST |AU |JS |CLAP )`)
)

// Chain is an FX chain found on one track of a project.
type Chain struct {
	// TrackIndex is 1-based in project order.
	TrackIndex int
	Name       string
	// Block is the original "<FXCHAIN ... >" text.
	Block string
}

// Preset renders the chain in the standalone preset file format.
func (c Chain) Preset() string {
	return presetHeader + strings.TrimPrefix(c.Block, fxChainMarker)
}

// ParseChains returns every track chain in content that holds at least one
// plugin. Tracks without an FX chain, with an unterminated chain, or with an
// empty chain are skipped.
func ParseChains(content string) []Chain {
	chunks := strings.Split(content, trackMarker)
	if len(chunks) < 2 {
		return nil
	}
	var chains []Chain
	for i, chunk := range chunks[1:] {
		index := i + 1
		start := strings.Index(chunk, fxChainMarker)
		if start < 0 {
			continue
		}
		block, ok := ExtractBlock(chunk, start)
		if !ok {
			continue
		}
		if !HasPlugins(block) {
			continue
		}
		chains = append(chains, Chain{
			TrackIndex: index,
			Name:       trackName(chunk, index),
			Block:      block,
		})
	}
	return chains
}

// HasPlugins reports whether an FX chain block contains a plugin instance.
func HasPlugins(block string) bool {
	return pluginPattern.MatchString(block)
}

func trackName(chunk string, index int) string {
	if m := quotedNamePattern.FindStringSubmatch(chunk); m != nil && strings.TrimSpace(m[1]) != "" {
		return m[1]
	}
	if m := bareNamePattern.FindStringSubmatch(chunk); m != nil {
		return m[1]
	}
	return fmt.Sprintf("Track %d", index)
}
