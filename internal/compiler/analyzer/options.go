package analyzer

import (
	"go.uber.org/zap"
)

// Options configures bounds and shape heuristics for one Analyzer
type Options struct {
	// MaxDepth is the deepest nesting level analyzed. Deeper values become Node.
	MaxDepth int
	// MaxTypes caps the number of record types in one graph.
	MaxTypes int
	// DictionaryRatio is the share of numeric keys above which an object is bulk data.
	DictionaryRatio float64
	// MinDictionaryEntries is the minimum key count for the ratio rule to apply.
	MinDictionaryEntries int
	// MaxFieldKey is the largest numeric key still plausible as a field name.
	MaxFieldKey int64
	// Logger receives debug and warning events. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns the standard bounds and heuristic constants
func DefaultOptions() Options {
	return Options{
		MaxDepth:             64,
		MaxTypes:             4096,
		DictionaryRatio:      0.75,
		MinDictionaryEntries: 5,
		MaxFieldKey:          1_000_000,
	}
}

// withDefaults fills zero values from DefaultOptions
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	if o.MaxTypes <= 0 {
		o.MaxTypes = d.MaxTypes
	}
	if o.DictionaryRatio <= 0 || o.DictionaryRatio > 1 {
		o.DictionaryRatio = d.DictionaryRatio
	}
	if o.MinDictionaryEntries <= 0 {
		o.MinDictionaryEntries = d.MinDictionaryEntries
	}
	if o.MaxFieldKey <= 0 {
		o.MaxFieldKey = d.MaxFieldKey
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
