package naming

// reserved holds identifiers that cannot be used verbatim as type or field
// names by common emit targets: Go keywords and predeclared identifiers, C#
// keywords, and members every C# object already has. Generated names are
// always Pascal-case, so each word is held both as written and Pascalized.
var reserved = map[string]struct{}{}

func init() {
	groups := [][]string{
		// Go keywords
		{"break", "case", "chan", "const", "continue", "default", "defer", "else",
			"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
			"map", "package", "range", "return", "select", "struct", "switch", "type", "var"},
		// Go predeclared identifiers
		{"any", "bool", "byte", "comparable", "complex64", "complex128", "error",
			"float32", "float64", "int", "int8", "int16", "int32", "int64", "rune",
			"string", "uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
			"true", "false", "iota", "nil", "append", "cap", "close", "copy",
			"delete", "len", "make", "new", "panic", "print", "println", "recover"},
		// C# keywords
		{"abstract", "as", "base", "checked", "class", "decimal", "delegate", "do",
			"double", "enum", "event", "explicit", "extern", "finally", "fixed",
			"float", "foreach", "implicit", "in", "internal", "is", "lock", "long",
			"namespace", "null", "object", "operator", "out", "override", "params",
			"private", "protected", "public", "readonly", "ref", "sbyte", "sealed",
			"short", "sizeof", "stackalloc", "static", "this", "throw", "try",
			"typeof", "ulong", "unchecked", "unsafe", "ushort", "using", "virtual",
			"void", "volatile", "while", "char", "catch"},
		// Inherited object members
		{"Equals", "GetHashCode", "GetType", "ToString", "Finalize",
			"MemberwiseClone", "ReferenceEquals"},
	}
	for _, group := range groups {
		for _, word := range group {
			reserved[word] = struct{}{}
			reserved[Pascalize(word)] = struct{}{}
		}
	}
}

// IsReserved reports whether name collides with a reserved identifier
func IsReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

// Escape appends an underscore to reserved names
func Escape(name string) string {
	if IsReserved(name) {
		return name + "_"
	}
	return name
}
