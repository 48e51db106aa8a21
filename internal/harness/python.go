package harness

import (
	"fmt"
	"math/big"
	"strings"
)

type Python struct{}

func (Python) Language() string { return "python" }

func (Python) Generate(spec Spec, code string) ([]File, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("import collections\nimport json\nimport sys\n\n")
	b.WriteString("from ListNode import ListNode\nfrom TreeNode import TreeNode\nfrom Solution import Solution\n\n")
	fmt.Fprintf(&b, "RESULT = %s\n", pythonString(resultPrefix))
	fmt.Fprintf(&b, "SEPARATOR = %s\n", pythonString(separator))
	b.WriteString("\nsys.setrecursionlimit(10000)\n")
	b.WriteString(pythonHelpers)

	for i, tc := range spec.TestCases {
		args, err := arguments(spec, tc)
		if err != nil {
			return nil, fmt.Errorf("test case %d: %w", i, err)
		}
		values := make([]string, len(args))
		for j, a := range args {
			values[j] = pythonValue(a.Type, a.Text)
		}
		fmt.Fprintf(&b, "\n\ndef case_%d():\n", i)
		b.WriteString("    sol = Solution()\n")
		fmt.Fprintf(&b, "    res = sol.%s(%s)\n", spec.FunctionName, strings.Join(values, ", "))
		b.WriteString("    print()\n")
		fmt.Fprintf(&b, "    print(RESULT + display_output(res, %s), flush=True)\n", pythonBool(spec.OutputType.nodeNull()))
	}

	b.WriteString("\n\nCASES = [")
	for i := range spec.TestCases {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "case_%d", i)
	}
	b.WriteString(`]


if __name__ == '__main__':
    for case in CASES:
        try:
            case()
        except Exception as e:
            print()
            print('%s: %s' % (type(e).__name__, e))
        print(SEPARATOR, flush=True)
`)

	return []File{
		{Name: "ListNode.py", Content: pythonListNode},
		{Name: "TreeNode.py", Content: pythonTreeNode},
		{Name: "Solution.py", Content: pythonSolutionPrelude + code + "\n"},
		{Name: "main.py", Content: b.String()},
	}, nil
}

func pythonValue(t ParamType, text string) string {
	switch {
	case t == TypeInt:
		if n, ok := new(big.Int).SetString(text, 10); ok {
			return n.String()
		}
		return "to_int(" + PythonLiteral(text) + ")"
	case t == TypeBoolean:
		switch text {
		case "true":
			return "True"
		case "false":
			return "False"
		}
		return "to_boolean(" + PythonLiteral(text) + ")"
	case structured[t]:
		return "to_" + string(t) + "(" + PythonLiteral(text) + ")"
	default:
		return PythonLiteral(text)
	}
}

func pythonBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
