package course

import "strings"

// Resolve returns the first non-empty value for any of the aliases.
//
// Two tries per alias, in priority order: the alias verbatim, then the
// alias lowercased. The row key itself is never case-folded, so a header
// like "COURSE ID" matches neither "Course ID" nor "course id" -- only
// the literal and lowercased alias spellings are tolerated. The exact
// try runs first so a stray lowercase duplicate column cannot shadow
// the properly cased one.
func Resolve(row RawRow, aliases []string) (string, bool) {
	for _, alias := range aliases {
		if v, ok := row[alias]; ok && v != "" {
			return v, true
		}
		if v, ok := row[strings.ToLower(alias)]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}
