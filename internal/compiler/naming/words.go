package naming

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"

	utilstrings "github.com/savegen/savegen/internal/util/strings"
)

// Generic is the name used for keys that carry no usable identifier text
const Generic = "Entry"

// Pascalize converts a source key to an identifier fragment
func Pascalize(key string) string {
	return utilstrings.ToPascalCase(key)
}

// Word converts a source key to a fragment for composing type names.
// Keys without usable identifier text become Entry.
func Word(key string) string {
	word := Pascalize(key)
	if word == "" || isDigits(word) {
		return Generic
	}
	return word
}

// Sanitize turns an arbitrary base into a valid, non-reserved identifier.
// Empty and purely numeric bases become Entry; a leading digit gets Entry as
// a prefix.
func Sanitize(base string) string {
	name := Pascalize(base)
	if name == "" || isDigits(name) {
		return Generic
	}
	if r := []rune(name)[0]; unicode.IsDigit(r) {
		name = Generic + name
	}
	return Escape(name)
}

func init() {
	inflection.AddUncountable("data", "info")
	inflection.AddIrregular("virus", "viruses")
}

// collectionSuffixes mark a name as a collection without a plural ending
var collectionSuffixes = []string{"List", "Item"}

// Singularize derives an element name from a collection name:
// Planets -> Planet, Countries -> Country, ShipList -> Ship,
// CargoItem -> Cargo, CargoItems -> CargoItem. Only the last word of a
// Pascal-case name is inflected. Names that do not look plural are returned
// unchanged.
func Singularize(name string) string {
	for _, suffix := range collectionSuffixes {
		if trimmed, ok := strings.CutSuffix(name, suffix); ok && trimmed != "" {
			return trimmed
		}
	}

	at := lastWordStart(name)
	word := inflection.Singular(name[at:])
	if word == "" {
		return name
	}
	return name[:at] + word
}

// lastWordStart returns the byte offset of the final Pascal-case word in
// name. A run of capitals stays with the word it opens (ShipIDs -> IDs).
func lastWordStart(name string) int {
	runes := []rune(name)
	for i := len(runes) - 1; i > 0; i-- {
		if unicode.IsUpper(runes[i]) && !unicode.IsUpper(runes[i-1]) {
			return len(string(runes[:i]))
		}
	}
	return 0
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
