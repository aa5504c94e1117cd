package rpp

import (
	"strings"
	"testing"
)

const sampleProject = `<REAPER_PROJECT 0.1 "7.0" 1700000000
  TEMPO 120 4 4
  <TRACK {A}
    NAME "Kick Bus"
    <FXCHAIN
      SHOW 0
      <VST "VST: ReaComp (Cockos)" reacomp.dll 0 "" 1919247213
        ZXE=
      >
      FLOATPOS 0 0 0 0
    >
  >
  <TRACK {B}
    NAME ""
    <FXCHAIN
      <JS loser/3BandEQ ""
        0 200 0 2000
      >
    >
  >
  <TRACK {C}
    NAME "Empty chain"
    <FXCHAIN
      SHOW 0
      DOCKED 0
    >
  >
  <TRACK {D}
    NAME "No chain"
  >
  <TRACK {E}
    NAME Drums
    <FXCHAIN
      <au "AU: AUDelay" "Apple: AUDelay" ""
      >
    >
  >
>
`

func TestParseChainsFiltersAndNames(t *testing.T) {
	chains := ParseChains(sampleProject)
	if len(chains) != 3 {
		t.Fatalf("expected 3 chains, got %d: %+v", len(chains), chains)
	}

	want := []struct {
		index int
		name  string
	}{
		{1, "Kick Bus"},
		{2, "Track 2"},
		{5, "Drums"},
	}
	for i, w := range want {
		if chains[i].TrackIndex != w.index || chains[i].Name != w.name {
			t.Fatalf("chain %d = (%d, %q), want (%d, %q)", i, chains[i].TrackIndex, chains[i].Name, w.index, w.name)
		}
		if !strings.HasPrefix(chains[i].Block, "<FXCHAIN") || !strings.HasSuffix(chains[i].Block, ">") {
			t.Fatalf("chain %d block not delimited: %q", i, chains[i].Block)
		}
	}
	if strings.Contains(chains[0].Block, "TRACK") {
		t.Fatalf("block leaked past its end: %q", chains[0].Block)
	}
}

func TestParseChainsNoTracks(t *testing.T) {
	if chains := ParseChains("<REAPER_PROJECT\n>"); len(chains) != 0 {
		t.Fatalf("expected no chains, got %+v", chains)
	}
	if chains := ParseChains(""); len(chains) != 0 {
		t.Fatalf("expected no chains for empty input, got %+v", chains)
	}
}

func TestParseChainsSkipsUnterminatedChain(t *testing.T) {
	src := "<TRACK\nNAME \"Broken\"\n<FXCHAIN\n<VST x\n>\n"
	if chains := ParseChains(src); len(chains) != 0 {
		t.Fatalf("expected unterminated chain to be skipped, got %+v", chains)
	}
}

func TestChainPresetRewritesHeader(t *testing.T) {
	chain := Chain{Block: "<FXCHAIN\n<VST x\n>\n>"}
	got := chain.Preset()
	if got != "<REAPER_FXCHAIN\n<VST x\n>\n>" {
		t.Fatalf("unexpected preset text %q", got)
	}
}

func TestHasPluginsCaseInsensitive(t *testing.T) {
	for _, block := range []string{"<FXCHAIN\n<vst x\n>\n>", "<FXCHAIN\n<Js y\n>\n>", "<FXCHAIN\n<CLAP z\n>\n>"} {
		if !HasPlugins(block) {
			t.Errorf("expected plugin in %q", block)
		}
	}
	if HasPlugins("<FXCHAIN\nSHOW 0\n>") {
		t.Error("expected no plugin in empty chain")
	}
}
