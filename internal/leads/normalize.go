package leads

import (
	"strings"
	"unicode/utf8"
)

// SplitMunicipalityUF splits the combined "Município / UF" field. The state is
// uppercased and cut to two characters; empty parts become nil.
func SplitMunicipalityUF(value *string) (municipality, uf *string) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parts := strings.Split(*value, "/")
	if m := strings.TrimSpace(parts[0]); m != "" {
		municipality = &m
	}
	if len(parts) > 1 {
		if u := truncateRunes(strings.ToUpper(strings.TrimSpace(parts[1])), 2); u != "" {
			uf = &u
		}
	}
	return municipality, uf
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
