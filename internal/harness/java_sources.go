package harness

const javaListNode = `public class ListNode {
    int val;
    ListNode next;

    ListNode() {}

    ListNode(int val) {
        this.val = val;
    }

    ListNode(int val, ListNode next) {
        this.val = val;
        this.next = next;
    }
}
`

const javaTreeNode = `public class TreeNode {
    int val;
    TreeNode left;
    TreeNode right;

    TreeNode() {}

    TreeNode(int val) {
        this.val = val;
    }

    TreeNode(int val, TreeNode left, TreeNode right) {
        this.val = val;
        this.left = left;
        this.right = right;
    }
}
`

const javaSolutionPrelude = "import java.util.*;\nimport java.util.stream.*;\n\n"

// JavaHelpers is the static helper block shared by the candidate harness and
// the reference harness: a JSON reader, to_<type> converters and display.
const JavaHelpers = `
    static String joinString(String[] parts) {
        return String.join("", parts);
    }

    private static final class JsonReader {
        private final String s;
        private int i;

        JsonReader(String s) {
            this.s = s;
        }

        Object read() {
            Object v = value();
            skip();
            if (i != s.length()) {
                throw new IllegalArgumentException("unexpected input at offset " + i);
            }
            return v;
        }

        private void skip() {
            while (i < s.length() && Character.isWhitespace(s.charAt(i))) {
                i++;
            }
        }

        private Object value() {
            skip();
            if (i >= s.length()) {
                throw new IllegalArgumentException("unexpected end of input");
            }
            char c = s.charAt(i);
            if (c == '[') {
                return array();
            }
            if (c == '"') {
                return string();
            }
            if (s.startsWith("null", i)) {
                i += 4;
                return null;
            }
            if (s.startsWith("true", i)) {
                i += 4;
                return Boolean.TRUE;
            }
            if (s.startsWith("false", i)) {
                i += 5;
                return Boolean.FALSE;
            }
            return number();
        }

        private List<Object> array() {
            List<Object> out = new ArrayList<>();
            i++;
            skip();
            if (i < s.length() && s.charAt(i) == ']') {
                i++;
                return out;
            }
            while (true) {
                out.add(value());
                skip();
                if (i >= s.length()) {
                    throw new IllegalArgumentException("unterminated array");
                }
                char c = s.charAt(i++);
                if (c == ']') {
                    return out;
                }
                if (c != ',') {
                    throw new IllegalArgumentException("expected ',' at offset " + (i - 1));
                }
            }
        }

        private String string() {
            StringBuilder sb = new StringBuilder();
            i++;
            while (i < s.length()) {
                char c = s.charAt(i++);
                if (c == '"') {
                    return sb.toString();
                }
                if (c != '\\') {
                    sb.append(c);
                    continue;
                }
                if (i >= s.length()) {
                    break;
                }
                char e = s.charAt(i++);
                switch (e) {
                    case 'n': sb.append('\n'); break;
                    case 't': sb.append('\t'); break;
                    case 'r': sb.append('\r'); break;
                    case 'b': sb.append('\b'); break;
                    case 'f': sb.append('\f'); break;
                    case 'u':
                        sb.append((char) Integer.parseInt(s.substring(i, i + 4), 16));
                        i += 4;
                        break;
                    default: sb.append(e);
                }
            }
            throw new IllegalArgumentException("unterminated string");
        }

        private Long number() {
            int start = i;
            if (i < s.length() && (s.charAt(i) == '-' || s.charAt(i) == '+')) {
                i++;
            }
            while (i < s.length() && Character.isDigit(s.charAt(i))) {
                i++;
            }
            if (i == start || !Character.isDigit(s.charAt(i - 1))) {
                throw new IllegalArgumentException("unexpected character at offset " + start);
            }
            return Long.parseLong(s.substring(start, i));
        }
    }

    private static Object parse(String s) {
        return new JsonReader(s).read();
    }

    private static List<?> asList(Object o) {
        if (o instanceof List) {
            return (List<?>) o;
        }
        throw new IllegalArgumentException("expected an array, got " + o);
    }

    private static int asInt(Object o) {
        if (o instanceof Long) {
            long v = (Long) o;
            if (v < Integer.MIN_VALUE || v > Integer.MAX_VALUE) {
                throw new IllegalArgumentException("integer out of range: " + v);
            }
            return (int) v;
        }
        if (o instanceof String) {
            return Integer.parseInt(((String) o).trim());
        }
        throw new IllegalArgumentException("expected an integer, got " + o);
    }

    private static String asString(Object o) {
        return o == null ? null : o instanceof String ? (String) o : String.valueOf(o);
    }

    private static char asChar(Object o) {
        String s = asString(o);
        if (s == null || s.length() != 1) {
            throw new IllegalArgumentException("expected a single character, got " + o);
        }
        return s.charAt(0);
    }

    static int to_int(String s) {
        return asInt(parse(s));
    }

    static boolean to_boolean(String s) {
        Object o = parse(s);
        if (o instanceof Boolean) {
            return (Boolean) o;
        }
        throw new IllegalArgumentException("expected a boolean, got " + s);
    }

    static String to_string(String s) {
        String t = s.trim();
        if (t.startsWith("\"")) {
            Object o = parse(t);
            if (o instanceof String) {
                return (String) o;
            }
        }
        return s;
    }

    private static int[] asIntArray(Object o) {
        List<?> l = asList(o);
        int[] out = new int[l.size()];
        for (int k = 0; k < out.length; k++) {
            out[k] = asInt(l.get(k));
        }
        return out;
    }

    static int[] to_int_array(String s) {
        return asIntArray(parse(s));
    }

    static int[][] to_int_array_2d(String s) {
        List<?> l = asList(parse(s));
        int[][] out = new int[l.size()][];
        for (int k = 0; k < out.length; k++) {
            out[k] = asIntArray(l.get(k));
        }
        return out;
    }

    static List<Integer> to_int_list(String s) {
        List<Integer> out = new ArrayList<>();
        for (int v : to_int_array(s)) {
            out.add(v);
        }
        return out;
    }

    static List<List<Integer>> to_int_list_2d(String s) {
        List<List<Integer>> out = new ArrayList<>();
        for (int[] row : to_int_array_2d(s)) {
            List<Integer> r = new ArrayList<>();
            for (int v : row) {
                r.add(v);
            }
            out.add(r);
        }
        return out;
    }

    private static List<String> asStringList(Object o) {
        List<String> out = new ArrayList<>();
        for (Object e : asList(o)) {
            out.add(asString(e));
        }
        return out;
    }

    static List<String> to_string_list(String s) {
        return asStringList(parse(s));
    }

    static String[] to_string_array(String s) {
        return to_string_list(s).toArray(new String[0]);
    }

    static List<List<String>> to_string_list_2d(String s) {
        List<List<String>> out = new ArrayList<>();
        for (Object row : asList(parse(s))) {
            out.add(asStringList(row));
        }
        return out;
    }

    private static char[] asCharArray(Object o) {
        List<?> l = asList(o);
        char[] out = new char[l.size()];
        for (int k = 0; k < out.length; k++) {
            out[k] = asChar(l.get(k));
        }
        return out;
    }

    static char[] to_char_array(String s) {
        return asCharArray(parse(s));
    }

    static char[][] to_char_array_2d(String s) {
        List<?> l = asList(parse(s));
        char[][] out = new char[l.size()][];
        for (int k = 0; k < out.length; k++) {
            out[k] = asCharArray(l.get(k));
        }
        return out;
    }

    private static ListNode asListNode(Object o) {
        if (o == null) {
            return null;
        }
        ListNode dummy = new ListNode(0);
        ListNode tail = dummy;
        for (Object e : asList(o)) {
            tail.next = new ListNode(asInt(e));
            tail = tail.next;
        }
        return dummy.next;
    }

    static ListNode to_list_node(String s) {
        return asListNode(parse(s));
    }

    static ListNode[] to_list_node_array(String s) {
        List<?> l = asList(parse(s));
        ListNode[] out = new ListNode[l.size()];
        for (int k = 0; k < out.length; k++) {
            out[k] = asListNode(l.get(k));
        }
        return out;
    }

    static TreeNode to_tree_node(String s) {
        Object o = parse(s);
        if (o == null) {
            return null;
        }
        List<?> l = asList(o);
        if (l.isEmpty() || l.get(0) == null) {
            return null;
        }
        TreeNode root = new TreeNode(asInt(l.get(0)));
        ArrayDeque<TreeNode> queue = new ArrayDeque<>();
        queue.add(root);
        int k = 1;
        while (!queue.isEmpty() && k < l.size()) {
            TreeNode node = queue.poll();
            if (k < l.size() && l.get(k) != null) {
                node.left = new TreeNode(asInt(l.get(k)));
                queue.add(node.left);
            }
            k++;
            if (k < l.size() && l.get(k) != null) {
                node.right = new TreeNode(asInt(l.get(k)));
                queue.add(node.right);
            }
            k++;
        }
        return root;
    }

    static String display(Object o, boolean nodeNull) {
        StringBuilder sb = new StringBuilder();
        write(sb, o, nodeNull);
        return sb.toString();
    }

    private static void write(StringBuilder sb, Object o, boolean nodeNull) {
        if (o == null) {
            sb.append(nodeNull ? "[]" : "null");
        } else if (o instanceof String) {
            quote(sb, (String) o);
        } else if (o instanceof Character) {
            quote(sb, o.toString());
        } else if (o instanceof ListNode) {
            sb.append('[');
            for (ListNode p = (ListNode) o; p != null; p = p.next) {
                if (p != o) {
                    sb.append(", ");
                }
                sb.append(p.val);
            }
            sb.append(']');
        } else if (o instanceof TreeNode) {
            writeTree(sb, (TreeNode) o);
        } else if (o instanceof Iterable) {
            sb.append('[');
            boolean first = true;
            for (Object e : (Iterable<?>) o) {
                if (!first) {
                    sb.append(", ");
                }
                first = false;
                write(sb, e, nodeNull);
            }
            sb.append(']');
        } else if (o.getClass().isArray()) {
            int n = java.lang.reflect.Array.getLength(o);
            sb.append('[');
            for (int k = 0; k < n; k++) {
                if (k > 0) {
                    sb.append(", ");
                }
                write(sb, java.lang.reflect.Array.get(o, k), nodeNull);
            }
            sb.append(']');
        } else {
            sb.append(o);
        }
    }

    private static void writeTree(StringBuilder sb, TreeNode root) {
        List<String> values = new ArrayList<>();
        LinkedList<TreeNode> queue = new LinkedList<>();
        queue.add(root);
        while (!queue.isEmpty()) {
            TreeNode node = queue.poll();
            if (node == null) {
                values.add("null");
                continue;
            }
            values.add(String.valueOf(node.val));
            queue.add(node.left);
            queue.add(node.right);
        }
        int end = values.size();
        while (end > 0 && values.get(end - 1).equals("null")) {
            end--;
        }
        sb.append('[');
        for (int k = 0; k < end; k++) {
            if (k > 0) {
                sb.append(", ");
            }
            sb.append(values.get(k));
        }
        sb.append(']');
    }

    private static void quote(StringBuilder sb, String s) {
        sb.append('"');
        for (int k = 0; k < s.length(); k++) {
            char c = s.charAt(k);
            switch (c) {
                case '"': sb.append("\\\""); break;
                case '\\': sb.append("\\\\"); break;
                case '\n': sb.append("\\n"); break;
                case '\r': sb.append("\\r"); break;
                case '\t': sb.append("\\t"); break;
                case '\b': sb.append("\\b"); break;
                case '\f': sb.append("\\f"); break;
                default:
                    if (c < 0x20) {
                        sb.append(String.format("\\u%04x", (int) c));
                    } else {
                        sb.append(c);
                    }
            }
        }
        sb.append('"');
    }
`
