package classify

import "path/filepath"

// PreviewRow describes how one file would be handled by a run.
type PreviewRow struct {
	File       string `json:"file"`
	Name       string `json:"name"`
	Keyword    string `json:"keyword,omitempty"`
	PresetPath string `json:"preset,omitempty"`
	Matched    bool   `json:"matched"`
}

// Preview reports the group each file would join without touching the
// filesystem. Rows follow the input order.
func Preview(files []string, rules []Rule) []PreviewRow {
	rows := make([]PreviewRow, 0, len(files))
	for _, file := range files {
		row := PreviewRow{File: file, Name: filepath.Base(file)}
		if i := Match(file, rules); i >= 0 {
			row.Matched = true
			row.Keyword = rules[i].Keyword
			row.PresetPath = rules[i].PresetPath
		}
		rows = append(rows, row)
	}
	return rows
}
