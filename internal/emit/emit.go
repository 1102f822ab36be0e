// Package emit renders a described table as a C++ header for sqlpp11.
package emit

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"benritz/tosqlpp/internal/schema"
)

const DefaultNamespace = "models"

var (
	ErrNoColumns         = errors.New("table has no columns")
	ErrMissingTypeTrait  = errors.New("column has no type trait")
	ErrInvalidIdentifier = errors.New("not a valid C++ identifier")
)

// DuplicateSymbolError reports two columns whose capitalised symbol names
// collide, e.g. "id" and "Id".
type DuplicateSymbolError struct {
	Symbol string
	First  string
	Second string
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("columns %s and %s both render as %s", e.First, e.Second, e.Symbol)
}

type Option func(*renderer)

type renderer struct {
	namespace string
}

func WithNamespace(ns string) Option {
	return func(r *renderer) {
		if ns != "" {
			r.namespace = ns
		}
	}
}

type columnData struct {
	Symbol string
	Name   string
	Traits string
	Last   bool
}

type documentData struct {
	Namespace string
	Symbol    string
	Name      string
	Columns   []columnData
}

var documentTmpl = template.Must(template.New("header").Parse(
	"#pragma once\n" +
		"\n" +
		"namespace {{.Namespace}} {\n" +
		"\tnamespace {{.Symbol}}_ {\n" +
		"{{range .Columns}}" +
		"\t\tstruct {{.Symbol}} {\n" +
		"\t\t\tstruct _alias_t {\n" +
		"\t\t\t\tstatic constexpr const char _literal[] = \"{{.Name}}\";\n" +
		"\t\t\t\tusing _name_t = sqlpp::make_char_sequence<sizeof(_literal), _literal>;\n" +
		"\t\t\t\ttemplate <typename T>\n" +
		"\t\t\t\tstruct _member_t {\n" +
		"\t\t\t\t\tT {{.Name}};\n" +
		"\t\t\t\t\tT& operator()() { return {{.Name}}; }\n" +
		"\t\t\t\t\tconst T& operator()() const { return {{.Name}}; }\n" +
		"\t\t\t\t};\n" +
		"\t\t\t};\n" +
		"\n" +
		"\t\t\tusing _traits = sqlpp::make_traits<{{.Traits}}>;\n" +
		"\t\t};\n" +
		"{{if not .Last}}\n{{end}}" +
		"{{end}}" +
		"\t}\n" +
		"\n" +
		"\tstruct {{.Symbol}} : sqlpp::table_t<{{.Symbol}}{{range .Columns}}, {{$.Symbol}}_::{{.Symbol}}{{end}}> {\n" +
		"\t\tstruct _alias_t {\n" +
		"\t\t\tstatic constexpr const char _literal[] = \"{{.Name}}\";\n" +
		"\t\t\tusing _name_t = sqlpp::make_char_sequence<sizeof(_literal), _literal>;\n" +
		"\t\t\ttemplate <typename T>\n" +
		"\t\t\tstruct _member_t {\n" +
		"\t\t\t\tT {{.Name}};\n" +
		"\t\t\t\tT& operator()() { return {{.Name}}; }\n" +
		"\t\t\t\tconst T& operator()() const { return {{.Name}}; }\n" +
		"\t\t\t};\n" +
		"\t\t};\n" +
		"\t};\n" +
		"\n" +
		"\ttemplate <typename RowType>\n" +
		"\tnlohmann::json {{.Name}}_to_json(const RowType & row) {\n" +
		"\t\tnlohmann::json result;\n" +
		"\n" +
		"{{range .Columns}}" +
		"\t\tresult[\"{{.Name}}\"] = row.{{.Name}}.value();\n" +
		"{{end}}" +
		"\n" +
		"\t\treturn result;\n" +
		"\t}\n" +
		"}\n",
))

// Render produces the header for t. The output depends only on t and opts.
func Render(t schema.Table, opts ...Option) (string, error) {
	r := renderer{namespace: DefaultNamespace}
	for _, opt := range opts {
		opt(&r)
	}

	data, err := r.document(t)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := documentTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name, err)
	}
	return sb.String(), nil
}

func (r renderer) document(t schema.Table) (documentData, error) {
	if err := checkIdentifier(r.namespace); err != nil {
		return documentData{}, fmt.Errorf("namespace %q: %w", r.namespace, err)
	}
	if err := checkIdentifier(t.Name); err != nil {
		return documentData{}, fmt.Errorf("table %q: %w", t.Name, err)
	}
	if len(t.Columns) == 0 {
		return documentData{}, fmt.Errorf("table %s: %w", t.Name, ErrNoColumns)
	}

	data := documentData{
		Namespace: r.namespace,
		Symbol:    Capitalize(t.Name),
		Name:      t.Name,
		Columns:   make([]columnData, 0, len(t.Columns)),
	}

	seen := make(map[string]string, len(t.Columns))
	for i, c := range t.Columns {
		name := c.Column.Name
		if err := checkIdentifier(name); err != nil {
			return documentData{}, fmt.Errorf("table %s column %q: %w", t.Name, name, err)
		}
		sym := Capitalize(name)
		if prev, ok := seen[sym]; ok {
			return documentData{}, fmt.Errorf("table %s: %w", t.Name, &DuplicateSymbolError{Symbol: sym, First: prev, Second: name})
		}
		seen[sym] = name

		traits, err := formatTraits(c.Traits)
		if err != nil {
			return documentData{}, fmt.Errorf("table %s column %s: %w", t.Name, name, err)
		}

		data.Columns = append(data.Columns, columnData{
			Symbol: sym,
			Name:   name,
			Traits: traits,
			Last:   i == len(t.Columns)-1,
		})
	}
	return data, nil
}

func formatTraits(ts schema.TraitSet) (string, error) {
	if !ts.Tag().Valid() {
		return "", ErrMissingTypeTrait
	}
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		switch t.Kind {
		case schema.TraitType:
			parts = append(parts, "sqlpp::"+string(t.Tag))
		default:
			parts = append(parts, "sqlpp::tag::"+string(t.Kind))
		}
	}
	return strings.Join(parts, ", "), nil
}

// Capitalize upper-cases the first character and leaves the rest alone.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Column names are used verbatim as member names, so keywords are rejected.
var cppKeywords = map[string]struct{}{
	"alignas": {}, "alignof": {}, "and": {}, "and_eq": {}, "asm": {}, "auto": {},
	"bitand": {}, "bitor": {}, "bool": {}, "break": {}, "case": {}, "catch": {},
	"char": {}, "class": {}, "compl": {}, "concept": {}, "const": {}, "consteval": {},
	"constexpr": {}, "constinit": {}, "const_cast": {}, "continue": {}, "co_await": {},
	"co_return": {}, "co_yield": {}, "decltype": {}, "default": {}, "delete": {},
	"do": {}, "double": {}, "dynamic_cast": {}, "else": {}, "enum": {}, "explicit": {},
	"export": {}, "extern": {}, "false": {}, "float": {}, "for": {}, "friend": {},
	"goto": {}, "if": {}, "inline": {}, "int": {}, "long": {}, "mutable": {},
	"namespace": {}, "new": {}, "noexcept": {}, "not": {}, "not_eq": {}, "nullptr": {},
	"operator": {}, "or": {}, "or_eq": {}, "private": {}, "protected": {}, "public": {},
	"register": {}, "reinterpret_cast": {}, "requires": {}, "return": {}, "short": {},
	"signed": {}, "sizeof": {}, "static": {}, "static_assert": {}, "static_cast": {},
	"struct": {}, "switch": {}, "template": {}, "this": {}, "thread_local": {},
	"throw": {}, "true": {}, "try": {}, "typedef": {}, "typeid": {}, "typename": {},
	"union": {}, "unsigned": {}, "using": {}, "virtual": {}, "void": {}, "volatile": {},
	"wchar_t": {}, "while": {}, "xor": {}, "xor_eq": {},
}

func checkIdentifier(s string) error {
	if !identifierRe.MatchString(s) {
		return ErrInvalidIdentifier
	}
	if _, ok := cppKeywords[s]; ok {
		return ErrInvalidIdentifier
	}
	return nil
}
