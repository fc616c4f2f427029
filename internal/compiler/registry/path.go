package registry

import (
	"strconv"
	"strings"
)

// Structural path markers. Paths never carry concrete indices or numeric
// keys: every element of one array shares the path P[], and every value of
// an integer-keyed object shares P[#].
const (
	ElementMarker  = "[]"
	NumericMarker  = "[#]"
	wildcardMarker = "[*]"
)

// Root is the structural path of a document root
const Root = ""

// Child returns the path of the value stored under key inside the object at parent
func Child(parent, key string) string {
	if IsNumericKey(key) {
		return parent + NumericMarker
	}
	if parent == Root {
		return key
	}
	return parent + "." + key
}

// Element returns the path shared by every item of the array at parent
func Element(parent string) string {
	return parent + ElementMarker
}

// Normalize maps both collection markers to one wildcard so that the
// elements of an array and the values of an integer-keyed object observed
// at the same location correlate.
func Normalize(path string) string {
	if !strings.Contains(path, "[") {
		return path
	}
	path = strings.ReplaceAll(path, NumericMarker, wildcardMarker)
	return strings.ReplaceAll(path, ElementMarker, wildcardMarker)
}

// IsNumericKey reports whether a property key parses as a 64-bit integer
func IsNumericKey(key string) bool {
	if key == "" {
		return false
	}
	_, err := strconv.ParseInt(key, 10, 64)
	return err == nil
}

// Depth returns the nesting level of a path. The root is 0.
func Depth(path string) int {
	if path == Root {
		return 0
	}
	depth := 1 + strings.Count(path, ".")
	depth += strings.Count(path, ElementMarker)
	depth += strings.Count(path, NumericMarker)
	return depth
}

// hasPrefix reports whether path lies at or below prefix, respecting segment boundaries
func hasPrefix(path, prefix string) bool {
	if prefix == Root {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) {
		return true
	}
	next := path[len(prefix)]
	return next == '.' || next == '['
}
