package plan

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mark3labs/swagger2hooks/internal/schema"
)

// words splits s on every character that is not a letter or digit.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Pascal converts s to PascalCase, keeping the case of inner letters:
// "widgets_list" -> "WidgetsList", "listWidgets" -> "ListWidgets".
func Pascal(s string) string {
	caser := cases.Title(language.English, cases.NoLower)
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(caser.String(w))
	}
	out := b.String()
	if out == "" {
		return "X"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "X" + out
	}
	return out
}

// Camel converts s to camelCase: "widgets_list" -> "widgetsList".
func Camel(s string) string {
	p := []rune(Pascal(s))
	p[0] = unicode.ToLower(p[0])
	return schema.Identifier(string(p))
}

// UpperSnake converts s to UPPER_SNAKE: "pet-store" -> "PET_STORE".
func UpperSnake(s string) string {
	out := strings.ToUpper(strings.Join(words(s), "_"))
	if out == "" {
		return "DEFAULT"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}
	return out
}

// FileName makes a tag safe to use as a file or directory name.
func FileName(tag string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(tag) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "default"
	}
	return out
}

// TagNames are the identifiers derived from one tag.
type TagNames struct {
	Tag       string // as written in the document
	File      string // file and folder name
	Pascal    string // e.g. "Widgets"
	Upper     string // key in the endpoint map, e.g. "WIDGETS"
	Service   string // class name, e.g. "WidgetsService"
	Interface string // contract name, e.g. "IWidgetsService"
	Instance  string // exported instance, e.g. "widgetsService"
}

// NamesFor derives the identifiers for tag.
func NamesFor(tag string) TagNames {
	p := Pascal(tag)
	return TagNames{
		Tag:       tag,
		File:      FileName(tag),
		Pascal:    p,
		Upper:     UpperSnake(tag),
		Service:   p + "Service",
		Interface: "I" + p + "Service",
		Instance:  Camel(tag) + "Service",
	}
}
