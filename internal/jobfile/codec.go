package jobfile

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"reabatch/internal/services"
)

const (
	configOpen  = "<CONFIG"
	configClose = ">"

	keyFXChain     = "FXCHAIN"
	keyOutPath     = "OUTPATH"
	keyOutFormat   = "OUTFORMAT"
	keyNormalize   = "NORMALIZE"
	keyNormalizeTo = "NORMALIZETO"
	keyFadeIn      = "FADEIN"
	keyFadeOut     = "FADEOUT"
)

// Marshal renders job in descriptor form.
func Marshal(job Job) []byte {
	var buf bytes.Buffer
	for _, b := range job.Blocks {
		for _, f := range b.Files {
			buf.WriteString(quote(f))
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
		buf.WriteString(configOpen + "\n")
		fmt.Fprintf(&buf, "%s %s\n", keyFXChain, quote(b.FXChain))
		fmt.Fprintf(&buf, "%s %s\n", keyOutPath, quote(b.OutPath))
		format := b.Format
		if format == "" {
			format = FormatWAV
		}
		fmt.Fprintf(&buf, "%s %s\n", keyOutFormat, format)
		if b.Normalize {
			fmt.Fprintf(&buf, "%s 1\n", keyNormalize)
			fmt.Fprintf(&buf, "%s %s\n", keyNormalizeTo, formatNumber(b.PeakDB))
		}
		if b.AutoFade {
			fmt.Fprintf(&buf, "%s %s\n", keyFadeIn, formatNumber(fadeSeconds))
			fmt.Fprintf(&buf, "%s %s\n", keyFadeOut, formatNumber(fadeSeconds))
		}
		buf.WriteString(configClose + "\n")
	}
	return buf.Bytes()
}

// Parse reads a descriptor produced by Marshal. Unknown config keys are
// ignored; a file list without a config section is an error.
func Parse(data []byte) (Job, error) {
	var (
		job      Job
		current  Block
		inConfig bool
		lineNo   int
	)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !inConfig {
			switch {
			case line == "":
			case line == configOpen:
				inConfig = true
			default:
				current.Files = append(current.Files, unquote(line))
			}
			continue
		}
		if line == configClose {
			job.Blocks = append(job.Blocks, current)
			current = Block{}
			inConfig = false
			continue
		}
		if line == "" {
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		value = strings.TrimSpace(value)
		switch key {
		case keyFXChain:
			current.FXChain = unquote(value)
		case keyOutPath:
			current.OutPath = unquote(value)
		case keyOutFormat:
			format, err := ParseFormat(value)
			if err != nil {
				return Job{}, parseError(lineNo, err)
			}
			current.Format = format
		case keyNormalize:
			current.Normalize = value == "1"
		case keyNormalizeTo:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Job{}, parseError(lineNo, err)
			}
			current.PeakDB = v
		case keyFadeIn, keyFadeOut:
			current.AutoFade = true
		}
	}
	if err := scanner.Err(); err != nil {
		return Job{}, services.Wrap(services.ErrParse, "descriptor", "read", "", err)
	}
	if inConfig {
		return Job{}, parseError(lineNo, fmt.Errorf("unterminated %s section", configOpen))
	}
	if len(current.Files) > 0 {
		return Job{}, parseError(lineNo, fmt.Errorf("%d files without a %s section", len(current.Files), configOpen))
	}
	return job, nil
}

func parseError(line int, err error) error {
	return services.Wrap(services.ErrParse, "descriptor", "parse", fmt.Sprintf("line %d", line), err)
}

func quote(s string) string {
	return `"` + s + `"`
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
