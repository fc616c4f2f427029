package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedDescriptor is returned when a descriptor signature does not
// match any known collection form.
var ErrMalformedDescriptor = errors.New("malformed type descriptor")

const (
	listPrefix       = "List<"
	dictionaryPrefix = "Dictionary<"
)

// ParseDictionarySignature splits Dictionary<K,V> into its key kind and the
// value signature.
func ParseDictionarySignature(sig string) (KeyKind, string, error) {
	if !strings.HasPrefix(sig, dictionaryPrefix) || !strings.HasSuffix(sig, ">") {
		return 0, "", fmt.Errorf("%w: %q is not a dictionary", ErrMalformedDescriptor, sig)
	}

	inner := sig[len(dictionaryPrefix) : len(sig)-1]
	comma := topLevelComma(inner)
	if comma < 0 {
		return 0, "", fmt.Errorf("%w: %q has no key/value separator", ErrMalformedDescriptor, sig)
	}

	keyName, value := inner[:comma], inner[comma+1:]
	if value == "" || !balanced(value) {
		return 0, "", fmt.Errorf("%w: %q has an invalid value type", ErrMalformedDescriptor, sig)
	}

	for kind, name := range keyNames {
		if name == keyName {
			return kind, value, nil
		}
	}
	return 0, "", fmt.Errorf("%w: %q has unknown key type %q", ErrMalformedDescriptor, sig, keyName)
}

// ValueSignature returns the element signature of List<T> or the value
// signature of Dictionary<K,V>.
func ValueSignature(sig string) (string, error) {
	if strings.HasPrefix(sig, listPrefix) && strings.HasSuffix(sig, ">") {
		inner := sig[len(listPrefix) : len(sig)-1]
		if inner == "" || !balanced(inner) {
			return "", fmt.Errorf("%w: %q has an invalid element type", ErrMalformedDescriptor, sig)
		}
		return inner, nil
	}
	_, value, err := ParseDictionarySignature(sig)
	if err != nil {
		return "", err
	}
	return value, nil
}

// topLevelComma returns the index of the first comma not nested in <> or {}
func topLevelComma(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '{':
			depth++
		case '>', '}':
			depth--
		case ',':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// balanced reports whether every <, { is closed in order
func balanced(s string) bool {
	stack := make([]byte, 0, 8)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '{':
			stack = append(stack, s[i])
		case '>', '}':
			if len(stack) == 0 {
				return false
			}
			open := stack[len(stack)-1]
			if (s[i] == '>' && open != '<') || (s[i] == '}' && open != '{') {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}
