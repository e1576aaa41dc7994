package orderpdf

import (
	"strings"

	"github.com/lvillar/orderpdf/model"
)

// Extension of every artifact.
const Extension = ".pdf"

// SingleName returns the artifact name for one order. Path separators in the
// identifier are replaced so the name never escapes the output directory.
func SingleName(id model.ID) string {
	s := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, id.String())
	return "order-" + s + Extension
}

// CombinedName returns the artifact name for a group of orders.
func CombinedName(groupKey string) string {
	return "orders-" + Sanitize(groupKey) + Extension
}

// Sanitize replaces every rune outside [A-Za-z0-9] with an underscore.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, s)
}
