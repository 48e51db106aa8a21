package harness

import (
	"fmt"
	"strconv"
	"strings"
)

// Cpp binds every argument to a named local first, since LeetCode-style
// signatures take containers by non-const reference.
type Cpp struct{}

func (Cpp) Language() string { return "cpp" }

var cppTypes = map[ParamType]string{
	TypeInt:           "int",
	TypeBoolean:       "bool",
	TypeString:        "string",
	TypeIntArray:      "vector<int>",
	TypeIntArray2D:    "vector<vector<int>>",
	TypeStringArray:   "vector<string>",
	TypeStringList:    "vector<string>",
	TypeStringList2D:  "vector<vector<string>>",
	TypeCharArray2D:   "vector<vector<char>>",
	TypeListNode:      "ListNode*",
	TypeListNodeArray: "vector<ListNode*>",
	TypeTreeNode:      "TreeNode*",
	TypeIntList:       "vector<int>",
	TypeIntList2D:     "vector<vector<int>>",
}

func (Cpp) Generate(spec Spec, code string) ([]File, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("#include \"Solution.cpp\"\n\n")
	fmt.Fprintf(&b, "static const char* RESULT = %s;\n", cppString(resultPrefix))
	fmt.Fprintf(&b, "static const char* SEPARATOR = %s;\n", cppString(separator))
	b.WriteString(cppHelpers)

	for i, tc := range spec.TestCases {
		args, err := arguments(spec, tc)
		if err != nil {
			return nil, fmt.Errorf("test case %d: %w", i, err)
		}
		fmt.Fprintf(&b, "\nstatic void case%d() {\n", i)
		b.WriteString("    Solution sol;\n")
		names := make([]string, len(args))
		for j, a := range args {
			names[j] = "p" + strconv.Itoa(j)
			typ, value := cppDecl(a.Type, a.Text)
			fmt.Fprintf(&b, "    %s %s = %s;\n", typ, names[j], value)
		}
		fmt.Fprintf(&b, "    auto res = sol.%s(%s);\n", spec.FunctionName, strings.Join(names, ", "))
		b.WriteString("    cout << \"\\n\" << RESULT << display_output(res) << \"\\n\";\n")
		b.WriteString("}\n")
	}

	b.WriteString(`
static void run_case(void (*fn)()) {
    try {
        fn();
    } catch (const exception& e) {
        cout << "\n" << e.what() << "\n";
    } catch (...) {
        cout << "\nunknown exception\n";
    }
    cout << SEPARATOR << "\n" << flush;
}

int main() {
`)
	for i := range spec.TestCases {
		fmt.Fprintf(&b, "    run_case(case%d);\n", i)
	}
	b.WriteString("    return 0;\n}\n")

	return []File{
		{Name: "ListNode.cpp", Content: cppListNode},
		{Name: "TreeNode.cpp", Content: cppTreeNode},
		{Name: "Solution.cpp", Content: cppSolutionPrelude + code + "\n"},
		{Name: "Main.cpp", Content: b.String()},
	}, nil
}

func cppDecl(t ParamType, text string) (string, string) {
	switch {
	case t == TypeInt:
		if n, err := strconv.ParseInt(text, 10, 32); err == nil {
			return "int", strconv.FormatInt(n, 10)
		}
		return "int", "to_int(" + CppLiteral(text) + ")"
	case t == TypeBoolean:
		if text == "true" || text == "false" {
			return "bool", text
		}
		return "bool", "to_boolean(" + CppLiteral(text) + ")"
	case structured[t]:
		return cppTypes[t], "to_" + string(t) + "(" + CppLiteral(text) + ")"
	default:
		return "string", CppLiteral(text)
	}
}
