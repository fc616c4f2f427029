package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/savegen/savegen/internal/compiler/ast"
)

var datePattern = regexp.MustCompile(`^(\d{1,4})\.(\d{1,2})\.(\d{1,2})$`)

// classifyBare types an unquoted token: yes/no, int32, int64, float, then identifier
func classifyBare(text string) *ast.Scalar {
	switch text {
	case "yes":
		return &ast.Scalar{Kind: ast.ScalarBool, Raw: text, Value: true}
	case "no":
		return &ast.Scalar{Kind: ast.ScalarBool, Raw: text, Value: false}
	}

	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return &ast.Scalar{Kind: ast.ScalarInt32, Raw: text, Value: int32(v)}
		}
		return &ast.Scalar{Kind: ast.ScalarInt64, Raw: text, Value: v}
	}

	if strings.Contains(text, ".") {
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			return &ast.Scalar{Kind: ast.ScalarFloat, Raw: text, Value: v}
		}
	}

	return &ast.Scalar{Kind: ast.ScalarIdentifier, Raw: text, Value: text}
}

// classifyQuoted types quoted content: date, guid, or plain string
func classifyQuoted(text string) *ast.Scalar {
	if d, ok := parseDate(text); ok {
		return &ast.Scalar{Kind: ast.ScalarDate, Raw: text, Value: d}
	}
	if id, ok := parseGuid(text); ok {
		return &ast.Scalar{Kind: ast.ScalarGuid, Raw: text, Value: id}
	}
	return &ast.Scalar{Kind: ast.ScalarString, Raw: text, Value: text}
}

func parseDate(text string) (ast.Date, bool) {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return ast.Date{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ast.Date{}, false
	}
	return ast.Date{Year: year, Month: month, Day: day}, true
}

// parseGuid accepts only the canonical 8-4-4-4-12 form; uuid.Parse on its
// own also takes braces, urn: prefixes and undashed hex.
func parseGuid(text string) (uuid.UUID, bool) {
	if len(text) != 36 || text[8] != '-' || text[13] != '-' || text[18] != '-' || text[23] != '-' {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(text)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}
