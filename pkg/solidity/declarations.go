package solidity

import (
	"fmt"
	"regexp"
	"strings"
)

// Declaration extraction over comment-stripped source. These feed signature
// normalization (custom value types and structs resolve to their canonical
// ABI types) and the functions listing in the CLI.

var (
	interfaceRe  = regexp.MustCompile(`interface\s+(\w+)\s*\{`)
	contractRe   = regexp.MustCompile(`(?:abstract\s+)?contract\s+(\w+)\s*(?:is\s+[^{]+)?\s*\{`)
	structRe     = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]+)\}`)
	enumRe       = regexp.MustCompile(`enum\s+(\w+)\s*\{([^}]+)\}`)
	constantRe   = regexp.MustCompile(`(\w+)\s+(?:internal\s+|private\s+|public\s+)?constant\s+(?:internal\s+|private\s+|public\s+)?(\w+)\s*=\s*([^;]+);`)
	customTypeRe = regexp.MustCompile(`type\s+(\w+)\s+is\s+([^;]+);`)
	usingRe      = regexp.MustCompile(`using\s+\w+\s+for\s+[^;]+;`)
	libraryRe    = regexp.MustCompile(`library\s+(\w+)\s*\{`)
	functionRe   = regexp.MustCompile(`function\s+(\w+)\s*\(([^)]*)\)\s+([^{]+)\{`)
	structBodyRe = regexp.MustCompile(`\{([^}]+)\}`)
)

// Interfaces returns the names of all interfaces and contracts declared in
// code. Both map to address when they appear as parameter types.
func Interfaces(code string) []string {
	code = StripComments(code)
	var names []string
	for _, m := range interfaceRe.FindAllStringSubmatch(code, -1) {
		names = append(names, m[1])
	}
	for _, m := range contractRe.FindAllStringSubmatch(code, -1) {
		names = append(names, m[1])
	}
	return names
}

// Structs returns struct name -> full struct definition text.
func Structs(code string) map[string]string {
	code = StripComments(code)
	out := map[string]string{}
	for _, m := range structRe.FindAllStringSubmatch(code, -1) {
		out[m[1]] = strings.TrimSpace(m[0])
	}
	return out
}

// Enums returns enum name -> full enum definition text.
func Enums(code string) map[string]string {
	code = StripComments(code)
	out := map[string]string{}
	for _, m := range enumRe.FindAllStringSubmatch(code, -1) {
		out[m[1]] = strings.TrimSpace(m[0])
	}
	return out
}

// EnumValues returns enum name -> 1-based index -> member name, the shape
// clear-signing descriptors use for enum display lookups.
func EnumValues(code string) map[string]map[string]string {
	code = StripComments(code)
	out := map[string]map[string]string{}
	for _, m := range enumRe.FindAllStringSubmatch(code, -1) {
		var members []string
		for _, v := range strings.Split(m[2], ",") {
			if v = strings.TrimSpace(v); v != "" {
				members = append(members, v)
			}
		}
		if len(members) == 0 {
			continue
		}
		values := map[string]string{}
		for i, v := range members {
			values[fmt.Sprintf("%d", i+1)] = v
		}
		out[m[1]] = values
	}
	return out
}

// Constants returns constant name -> normalized declaration.
func Constants(code string) map[string]string {
	code = StripComments(code)
	out := map[string]string{}
	for _, m := range constantRe.FindAllStringSubmatch(code, -1) {
		out[m[2]] = fmt.Sprintf("%s constant %s = %s;", m[1], m[2], strings.TrimSpace(m[3]))
	}
	return out
}

// CustomTypes returns user-defined value type name -> underlying type, from
// declarations of the form "type TakerTraits is uint256;".
func CustomTypes(code string) map[string]string {
	code = StripComments(code)
	out := map[string]string{}
	for _, m := range customTypeRe.FindAllStringSubmatch(code, -1) {
		out[m[1]] = strings.TrimSpace(m[2])
	}
	return out
}

// UsingStatements returns every "using LibName for TypeName;" statement.
func UsingStatements(code string) []string {
	code = StripComments(code)
	return usingRe.FindAllString(code, -1)
}

// Libraries returns library name -> full library body, including nested
// braces, truncated at end of source when unbalanced.
func Libraries(code string) map[string]string {
	out := map[string]string{}
	for _, m := range libraryRe.FindAllStringSubmatchIndex(code, -1) {
		name := code[m[2]:m[3]]
		span, _ := MatchBrace(code, m[1]-1)
		out[name] = strings.TrimSpace(code[m[0]:span.End])
	}
	return out
}

// FunctionDecl is one function definition found by ListFunctions.
type FunctionDecl struct {
	Name       string `json:"name"`
	Params     string `json:"params"`
	Visibility string `json:"visibility"`
	Body       string `json:"body"`
	Docstring  string `json:"docstring,omitempty"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
}

// Signature returns the declared (name + raw params) form, not the
// canonical ABI signature.
func (f FunctionDecl) Signature() string {
	return fmt.Sprintf("%s(%s)", f.Name, f.Params)
}

// ListFunctions extracts every function definition in code, in source
// order. Interface and abstract prototypes are skipped.
func ListFunctions(code string, rules *Rules) []FunctionDecl {
	loc := NewLocator(code, rules)
	var out []FunctionDecl
	for _, m := range functionRe.FindAllStringSubmatchIndex(code, -1) {
		name := code[m[2]:m[3]]
		params := strings.TrimSpace(code[m[4]:m[5]])
		modifiers := code[m[6]:m[7]]

		// A ';' between header and brace means the brace belongs to a later
		// declaration and this was a prototype.
		if strings.Contains(modifiers, ";") {
			continue
		}

		visibility := "internal"
		for _, v := range []string{"public", "external", "private"} {
			if strings.Contains(modifiers, v) {
				visibility = v
				break
			}
		}

		body := code[m[0]:]
		if span, ok := MatchBrace(code, m[1]-1); ok {
			body = code[m[0]:span.End]
		}
		startLine := strings.Count(code[:m[0]], "\n") + 1
		out = append(out, FunctionDecl{
			Name:       name,
			Params:     params,
			Visibility: visibility,
			Body:       body,
			Docstring:  loc.docstringBefore(m[0]),
			StartLine:  startLine,
			EndLine:    startLine + strings.Count(body, "\n"),
		})
	}
	return out
}

// StructTuple converts a struct definition to its canonical tuple type,
// resolving interface and custom value types through typeMap and nested
// structs through structs, recursively. Returns "" when the definition has
// no parseable body.
func StructTuple(structDef string, typeMap map[string]string, structs map[string]string) string {
	m := structBodyRe.FindStringSubmatch(structDef)
	if m == nil {
		return ""
	}

	var types []string
	for _, field := range strings.Split(m[1], ";") {
		tokens := strings.Fields(strings.TrimSpace(field))
		if len(tokens) == 0 {
			continue
		}
		fieldType := tokens[0]
		if resolved, ok := typeMap[fieldType]; ok {
			fieldType = resolved
		} else if nested, ok := structs[fieldType]; ok {
			if tuple := StructTuple(nested, typeMap, structs); tuple != "" {
				fieldType = tuple
			}
		}
		types = append(types, fieldType)
	}
	if len(types) == 0 {
		return ""
	}
	return "(" + strings.Join(types, ",") + ")"
}

// TypeMappings builds the custom-type and struct-tuple maps for code:
// interfaces and contracts resolve to address, user-defined value types to
// their underlying type, structs to their tuple form. The two maps plug
// straight into signature normalization.
func TypeMappings(code string) (typeMap, structTuples map[string]string) {
	typeMap = map[string]string{}
	for _, name := range Interfaces(code) {
		typeMap[name] = "address"
	}
	for name, underlying := range CustomTypes(code) {
		typeMap[name] = underlying
	}

	structs := Structs(code)
	structTuples = map[string]string{}
	for name, def := range structs {
		if tuple := StructTuple(def, typeMap, structs); tuple != "" {
			structTuples[name] = tuple
		}
	}
	return typeMap, structTuples
}
