// Package classify partitions audio files into keyword groups.
//
// Rules are tried in order against the lowercase file basename and the first
// rule whose keyword is a substring wins. Longer or more specific keywords do
// not take precedence over earlier ones. Two rules with the same keyword
// share one group, and the earlier rule's preset applies to it.
package classify

import (
	"path/filepath"
	"strings"

	"reabatch/internal/textutil"
)

// UnmatchedKey names the group of files that matched no rule.
const UnmatchedKey = "_unmatched"

// Rule maps a filename keyword to a preset file.
type Rule struct {
	Keyword    string
	PresetPath string
}

// Group is a set of files sharing a matched keyword.
type Group struct {
	Key        string
	PresetPath string
	Files      []string
}

// Result holds the matched groups in first-rule order plus the unmatched
// group. Every input file is in exactly one of them.
type Result struct {
	Groups    []Group
	Unmatched Group
}

// Count returns the number of files across every group.
func (r Result) Count() int {
	n := len(r.Unmatched.Files)
	for _, g := range r.Groups {
		n += len(g.Files)
	}
	return n
}

// Classify assigns each file to the group of the first matching rule. Rules
// with a blank keyword never match. Input order is kept within each group.
func Classify(files []string, rules []Rule) Result {
	folded := make([]string, len(rules))
	for i, rule := range rules {
		folded[i] = textutil.FoldKeyword(rule.Keyword)
	}

	result := Result{Unmatched: Group{Key: UnmatchedKey}}
	index := make(map[string]int)
	for _, file := range files {
		rule, ok := match(file, folded)
		if !ok {
			result.Unmatched.Files = append(result.Unmatched.Files, file)
			continue
		}
		key := folded[rule]
		i, seen := index[key]
		if !seen {
			i = len(result.Groups)
			index[key] = i
			result.Groups = append(result.Groups, Group{Key: key, PresetPath: rules[rule].PresetPath})
		}
		result.Groups[i].Files = append(result.Groups[i].Files, file)
	}
	return result
}

// Match returns the index of the first rule matching file, or -1.
func Match(file string, rules []Rule) int {
	folded := make([]string, len(rules))
	for i, rule := range rules {
		folded[i] = textutil.FoldKeyword(rule.Keyword)
	}
	i, ok := match(file, folded)
	if !ok {
		return -1
	}
	return i
}

func match(file string, keywords []string) (int, bool) {
	name := textutil.Fold(filepath.Base(file))
	for i, kw := range keywords {
		if kw != "" && strings.Contains(name, kw) {
			return i, true
		}
	}
	return 0, false
}
