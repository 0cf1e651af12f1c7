package storage

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes LIKE wildcards in s match literally under MySQL's default
// escape character.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
