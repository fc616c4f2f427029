package analyzer

import (
	"fmt"
	"strings"

	"github.com/savegen/savegen/internal/compiler/registry"
)

// Code identifies a kind of analysis diagnostic
type Code string

const (
	// CodeDictionaryHeuristic: an object with some named keys was treated as bulk data.
	CodeDictionaryHeuristic Code = "SCH100"
	// CodeEmptyShape: no occurrence at a path carried any content.
	CodeEmptyShape Code = "SCH101"

	// CodeDepthLimit: nesting exceeded the configured depth.
	CodeDepthLimit Code = "SCH200"
	// CodeTypeLimit: the graph reached the configured type count.
	CodeTypeLimit Code = "SCH201"

	// CodePairDictionaryFallback: an almost-pair-dictionary array was inferred as a list.
	CodePairDictionaryFallback Code = "SCH300"
	// CodeMixedShapes: scalars, objects and arrays were all seen at one path.
	CodeMixedShapes Code = "SCH301"
	// CodeScalarConflict: incompatible scalar kinds were widened to String.
	CodeScalarConflict Code = "SCH302"
	// CodeManyShapes: objects at one path carried many different key sets.
	CodeManyShapes Code = "SCH303"
)

// Severity indicates how much a diagnostic degrades the schema
type Severity string

const (
	// SeverityInfo marks a heuristic decision.
	SeverityInfo Severity = "info"
	// SeverityWarning marks a place where the schema is shallower than the data.
	SeverityWarning Severity = "warning"
)

// Diagnostic is a non-fatal note produced during analysis
type Diagnostic struct {
	Code     Code     `json:"code" yaml:"code"`
	Severity Severity `json:"severity" yaml:"severity"`
	Path     string   `json:"path" yaml:"path"`
	Message  string   `json:"message" yaml:"message"`
}

// String formats the diagnostic for terminal output
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", strings.ToUpper(string(d.Severity)), d.Code, DisplayPath(d.Path), d.Message)
}

// DisplayPath renders the root path readably
func DisplayPath(path string) string {
	if path == registry.Root {
		return "<root>"
	}
	return path
}

// diagnostics collects notes, keeping one per code and path
type diagnostics struct {
	list []Diagnostic
	seen map[string]struct{}
}

func newDiagnostics() *diagnostics {
	return &diagnostics{
		list: make([]Diagnostic, 0),
		seen: make(map[string]struct{}),
	}
}

// add records a diagnostic and reports whether it was new
func (d *diagnostics) add(code Code, severity Severity, path, format string, args ...any) bool {
	key := string(code) + "\x00" + path
	if _, dup := d.seen[key]; dup {
		return false
	}
	d.seen[key] = struct{}{}
	d.list = append(d.list, Diagnostic{
		Code:     code,
		Severity: severity,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
	return true
}

// HasWarnings reports whether any diagnostic has warning severity
func HasWarnings(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityWarning {
			return true
		}
	}
	return false
}
