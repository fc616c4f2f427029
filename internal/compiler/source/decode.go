// Package source turns raw save file bytes into UTF-8 text for the lexer.
package source

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names reported by Detect
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF16LE     = "utf-16le"
	EncodingUTF16BE     = "utf-16be"
	EncodingWindows1252 = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detect guesses the encoding of data. A byte order mark wins; otherwise
// zero bytes in the first pair of bytes indicate UTF-16, and text that is
// not valid UTF-8 is assumed to be Windows-1252, which older titles write.
func Detect(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return EncodingUTF8
	case bytes.HasPrefix(data, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return EncodingUTF16BE
	}

	if len(data) >= 2 {
		if data[0] == 0 && data[1] != 0 {
			return EncodingUTF16BE
		}
		if data[0] != 0 && data[1] == 0 {
			return EncodingUTF16LE
		}
	}

	if !utf8.Valid(data) {
		return EncodingWindows1252
	}
	return EncodingUTF8
}

// Decode converts data to a UTF-8 string, removing any byte order mark
func Decode(data []byte) (string, error) {
	enc := Detect(data)

	var decoder *encoding.Decoder
	switch enc {
	case EncodingUTF8:
		return string(bytes.TrimPrefix(data, bomUTF8)), nil
	case EncodingUTF16LE:
		decoder = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case EncodingUTF16BE:
		decoder = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case EncodingWindows1252:
		decoder = charmap.Windows1252.NewDecoder()
	}

	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s input: %w", enc, err)
	}
	return string(out), nil
}
