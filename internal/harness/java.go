package harness

import (
	"fmt"
	"strconv"
	"strings"
)

// Java generates a Main class with one static method per test case, which
// keeps each method under the JVM's 64KB bytecode limit.
type Java struct{}

func (Java) Language() string { return "java" }

func (Java) Generate(spec Spec, code string) ([]File, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("import java.io.*;\nimport java.util.*;\n\npublic class Main {\n")
	fmt.Fprintf(&b, "    private static final String RESULT = %s;\n", javaString(resultPrefix))
	fmt.Fprintf(&b, "    private static final String SEPARATOR = %s;\n", javaString(separator))
	b.WriteString(JavaHelpers)

	for i, tc := range spec.TestCases {
		args, err := JavaArgs(spec, tc)
		if err != nil {
			return nil, fmt.Errorf("test case %d: %w", i, err)
		}
		fmt.Fprintf(&b, "\n    private static void case%d() throws Throwable {\n", i)
		b.WriteString("        Solution sol = new Solution();\n")
		fmt.Fprintf(&b, "        var __res = sol.%s(%s);\n", spec.FunctionName, args)
		b.WriteString("        System.out.println();\n")
		fmt.Fprintf(&b, "        System.out.println(RESULT + display(__res, %t));\n", spec.OutputType.nodeNull())
		b.WriteString("    }\n")
	}

	b.WriteString(`
    private interface Case {
        void run() throws Throwable;
    }

    private static void run(Case c) {
        try {
            c.run();
        } catch (Throwable t) {
            System.out.println();
            System.out.println(t);
        }
        System.out.println(SEPARATOR);
    }

    public static void main(String[] args) throws Exception {
        System.setOut(new PrintStream(new FileOutputStream(FileDescriptor.out), true, "UTF-8"));
`)
	for i := range spec.TestCases {
		fmt.Fprintf(&b, "        run(Main::case%d);\n", i)
	}
	b.WriteString("        System.out.flush();\n    }\n}\n")

	return append(JavaNodeFiles(),
		File{Name: "Solution.java", Content: javaSolutionPrelude + code},
		File{Name: "Main.java", Content: b.String()},
	), nil
}

// JavaNodeFiles returns the ListNode and TreeNode classes every Java
// program is compiled with.
func JavaNodeFiles() []File {
	return []File{
		{Name: "ListNode.java", Content: javaListNode},
		{Name: "TreeNode.java", Content: javaTreeNode},
	}
}

// JavaArgs renders one test case's parameters as a Java argument list.
func JavaArgs(spec Spec, tc TestCase) (string, error) {
	args, err := arguments(spec, tc)
	if err != nil {
		return "", err
	}
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = javaValue(a.Type, a.Text)
	}
	return strings.Join(out, ", "), nil
}

func javaValue(t ParamType, text string) string {
	switch {
	case t == TypeInt:
		if n, err := strconv.ParseInt(text, 10, 32); err == nil {
			return strconv.FormatInt(n, 10)
		}
		return "to_int(" + JavaLiteral(text) + ")"
	case t == TypeBoolean:
		if text == "true" || text == "false" {
			return text
		}
		return "to_boolean(" + JavaLiteral(text) + ")"
	case structured[t]:
		return JavaConverter(t) + "(" + JavaLiteral(text) + ")"
	default:
		return JavaLiteral(text)
	}
}

// JavaConverter names the helper turning display or canonical text into a
// native value of type t.
func JavaConverter(t ParamType) string {
	if t.Known() {
		return "to_" + string(t)
	}
	return "to_string"
}

// JavaNodeNull reports the display flag for values of type t.
func JavaNodeNull(t ParamType) bool {
	return t.nodeNull()
}
