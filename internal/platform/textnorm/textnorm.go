// Package textnorm pliega texto para comparaciones insensibles a tildes y mayúsculas.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold quita diacríticos, pasa a minúsculas y colapsa espacios.
// "  Bogotá  D.C." -> "bogota d.c."
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	// El transformer tiene estado: uno por llamada.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// Contains compara haystack y needle ya plegados.
// Un needle vacío no filtra nada.
func Contains(haystack, needle string) bool {
	needle = Fold(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(Fold(haystack), needle)
}

// Equal indica si a y b son iguales tras plegarlos.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}
