// Package harness generates, per language, the entry-point program that
// feeds test cases to a candidate function and prints framed results.
//
// Values travel into a harness as canonical text (strict JSON for anything
// array shaped) embedded as string literals, and are converted to native
// values by helpers compiled into the harness. Return values are printed
// with one display format shared by every language:
//
//	5  true  "a\"b"  [1, 2]  [["a", "b"]]  [1, null, 2]
package harness

import (
	"fmt"
	"regexp"

	"github.com/itstheanurag/codejudge/internal/judgeerr"
)

type ParamType string

const (
	TypeInt           ParamType = "int"
	TypeBoolean       ParamType = "boolean"
	TypeString        ParamType = "string"
	TypeIntArray      ParamType = "int_array"
	TypeIntArray2D    ParamType = "int_array_2d"
	TypeStringArray   ParamType = "string_array"
	TypeStringList    ParamType = "string_list"
	TypeStringList2D  ParamType = "string_list_2d"
	TypeCharArray2D   ParamType = "char_array_2d"
	TypeListNode      ParamType = "list_node"
	TypeListNodeArray ParamType = "list_node_array"
	TypeTreeNode      ParamType = "tree_node"

	// Output-only types.
	TypeIntList   ParamType = "int_list"
	TypeIntList2D ParamType = "int_list_2d"
)

// structured types are parsed from JSON text inside the harness.
var structured = map[ParamType]bool{
	TypeIntArray:      true,
	TypeIntArray2D:    true,
	TypeStringArray:   true,
	TypeStringList:    true,
	TypeStringList2D:  true,
	TypeCharArray2D:   true,
	TypeListNode:      true,
	TypeListNodeArray: true,
	TypeTreeNode:      true,
	TypeIntList:       true,
	TypeIntList2D:     true,
}

// Known reports whether t has a dedicated conversion rule.
func (t ParamType) Known() bool {
	return structured[t] || t == TypeInt || t == TypeBoolean || t == TypeString
}

// nodeNull reports whether a null value of t displays as an empty list.
func (t ParamType) nodeNull() bool {
	return t == TypeListNode || t == TypeListNodeArray || t == TypeTreeNode
}

type Param struct {
	Name string    `json:"name"`
	Type ParamType `json:"type"`
}

// TestCase maps parameter names to canonical values. Extra keys are kept
// and echoed back with results.
type TestCase map[string]any

// Spec is everything an adapter needs besides the candidate's code.
type Spec struct {
	FunctionName string
	Params       []Param
	OutputType   ParamType
	TestCases    []TestCase
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate rejects problem metadata no harness can be generated from.
func (s Spec) Validate() error {
	if s.FunctionName == "" {
		return judgeerr.New(judgeerr.KindConfiguration, "problem has no function name")
	}
	if !identifier.MatchString(s.FunctionName) {
		return judgeerr.Newf(judgeerr.KindConfiguration, "invalid function name %q", s.FunctionName)
	}
	if s.Params == nil {
		return judgeerr.New(judgeerr.KindConfiguration, "problem has no parameter list")
	}
	return nil
}

// File is one generated source file.
type File struct {
	Name    string
	Content string
}

// Adapter generates the sources for one language.
type Adapter interface {
	Language() string
	Generate(spec Spec, code string) ([]File, error)
}

var adapters = map[string]Adapter{
	"java":   Java{},
	"cpp":    Cpp{},
	"python": Python{},
}

// For returns the adapter for a language id.
func For(language string) (Adapter, error) {
	a, ok := adapters[language]
	if !ok {
		return nil, judgeerr.Newf(judgeerr.KindUnsupported, "unsupported language %q", language)
	}
	return a, nil
}

// argument is one parameter of one test case, ready for embedding.
type argument struct {
	Type ParamType
	Text string
}

func arguments(spec Spec, tc TestCase) ([]argument, error) {
	args := make([]argument, len(spec.Params))
	for i, p := range spec.Params {
		text, err := Canonical(p.Type, tc[p.Name])
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		args[i] = argument{Type: p.Type, Text: text}
	}
	return args, nil
}
