package textutil

import "strings"

// SanitizePresetName converts a display name into the token used for a preset
// file name. ASCII letters are lowercased, ASCII digits are kept, and every
// other rune becomes an underscore. Distinct names can collapse to the same
// token ("Kick 1" and "kick-1"); callers writing files accept last-wins.
func SanitizePresetName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
