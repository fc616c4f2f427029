package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/savegen/savegen/internal/compiler/analyzer"
	"github.com/savegen/savegen/internal/compiler/parser"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Hints        []string
	HelpCommands []string
	NoColor      bool
}

// levelStyle is the header symbol and colors for one error level
type levelStyle struct {
	symbol string
	header []color.Attribute
	body   []color.Attribute
}

var levelStyles = map[ErrorLevel]levelStyle{
	ErrorLevelError:   {symbol: "❌", header: []color.Attribute{color.FgRed, color.Bold}, body: []color.Attribute{color.FgRed}},
	ErrorLevelWarning: {symbol: "⚠️", header: []color.Attribute{color.FgYellow, color.Bold}, body: []color.Attribute{color.FgYellow}},
	ErrorLevelInfo:    {symbol: "ℹ️", header: []color.Attribute{color.FgCyan, color.Bold}, body: []color.Attribute{color.FgCyan}},
}

// painter returns a color that honors noColor
func painter(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// FormatError creates a standardized error message with hints and help commands
//
// Example output:
//
//	❌ PARSE FAILED: SAVES/GAMESTATE
//	   Parse error at 12:3 (offset 201): Unbalanced braces: missing '}' for block opened at 10:9
//
//	   Hint: every '{' needs a matching '}'
//
//	   → Check one file: savegen check saves/gamestate
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	style := levelStyles[opts.Level]
	header := painter(opts.NoColor, style.header...)
	body := painter(opts.NoColor, style.body...)

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s\n", style.symbol, strings.ToUpper(opts.Context))
		body.Fprintf(&b, "   %s\n", opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", style.symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		body.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	writeLines(&b, painter(opts.NoColor, color.FgYellow), "Hint: ", opts.Hints)
	writeLines(&b, painter(opts.NoColor, color.FgCyan), "→ ", opts.HelpCommands)

	return b.String()
}

// writeLines writes a blank separator and one indented line per entry
func writeLines(b *strings.Builder, c *color.Color, prefix string, lines []string) {
	if len(lines) == 0 {
		return
	}
	b.WriteString("\n")
	for _, line := range lines {
		c.Fprintf(b, "   %s%s\n", prefix, line)
	}
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return painter(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// ParseFailure creates a standardized error for an input that failed to
// parse. Parse errors get a hint matching their message.
func ParseFailure(input string, err error, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: "PARSE FAILED: " + input,
		Problem: err.Error(),
		HelpCommands: []string{
			"Check one file: savegen check " + input,
		},
		NoColor: noColor,
	}

	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		opts.Problem = parseErr.Error()
		if hint := parseHint(parseErr.Message); hint != "" {
			opts.Hints = []string{hint}
		}
	}
	return FormatError(opts)
}

func parseHint(message string) string {
	switch {
	case strings.HasPrefix(message, "Unterminated string"):
		return "a quoted value is missing its closing '\"'"
	case strings.HasPrefix(message, "Unbalanced braces"):
		return "every '{' needs a matching '}'"
	case strings.HasPrefix(message, "Expected '='"):
		return "top-level entries and object members are written key=value"
	case strings.HasPrefix(message, "Expected value"):
		return "a key was followed by '=' but no value"
	default:
		return ""
	}
}

// DiagnosticMessage formats an analysis diagnostic as a warning or info line
func DiagnosticMessage(d analyzer.Diagnostic, noColor bool) string {
	level := ErrorLevelInfo
	if d.Severity == analyzer.SeverityWarning {
		level = ErrorLevelWarning
	}
	return FormatError(ErrorOptions{
		Level:   level,
		Problem: fmt.Sprintf("[%s] %s: %s", d.Code, analyzer.DisplayPath(d.Path), d.Message),
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, hints []string, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		Hints:   hints,
		HelpCommands: []string{
			"View config: cat savegen.yml",
			"Get help: savegen --help",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelWarning,
		Problem: message,
		NoColor: noColor,
	}
	return FormatError(opts)
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	}
	return FormatError(opts)
}
