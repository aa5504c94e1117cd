package rpp

// ExtractBlock returns the bracket-balanced block that opens at s[start].
// Depth rises on '<' and falls on '>'; the block ends at the first position
// where depth returns to zero. ok is false when s[start] is not '<' or the
// block never closes.
func ExtractBlock(s string, start int) (block string, ok bool) {
	if start < 0 || start >= len(s) || s[start] != '<' {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
