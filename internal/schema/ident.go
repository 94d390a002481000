package schema

import (
	"strconv"
	"strings"
	"unicode"
)

// TypeScript reserved words.
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "implements": true,
	"import": true, "in": true, "instanceof": true, "interface": true, "let": true,
	"new": true, "null": true, "package": true, "private": true, "protected": true,
	"public": true, "return": true, "static": true, "super": true, "switch": true,
	"this": true, "throw": true, "true": true, "try": true, "type": true,
	"typeof": true, "var": true, "void": true, "while": true, "with": true,
	"yield": true,
}

// IsReserved reports whether name is a TypeScript reserved word.
func IsReserved(name string) bool { return reservedWords[name] }

// IsIdentifier reports whether name can be used unquoted as a property name.
func IsIdentifier(name string) bool {
	if name == "" || unicode.IsDigit(rune(name[0])) {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			return false
		}
	}
	return true
}

// Identifier makes name a valid binding name: invalid characters become
// underscores, a leading digit is prefixed and reserved words get a trailing
// underscore.
func Identifier(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	if unicode.IsDigit(rune(name[0])) {
		b.WriteRune('_')
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	out := b.String()
	if reservedWords[out] {
		return out + "_"
	}
	return out
}

// WrapperTypes are the generic types every generated file declares.
var WrapperTypes = []string{"ResponseObject", "PaginationList", "PaginationParams"}

// TypeName returns the declaration name for a schema name. Schemas named
// like a wrapper type get a Model suffix.
func TypeName(name string) string {
	id := Identifier(name)
	for _, w := range WrapperTypes {
		if id == w {
			return id + "Model"
		}
	}
	return id
}

// PropertyKey renders name as an object member key, quoting it when needed.
func PropertyKey(name string) string {
	if IsIdentifier(name) {
		return name
	}
	return strconv.Quote(name)
}
