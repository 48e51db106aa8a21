package harness

const cppListNode = `#ifndef CODEJUDGE_LIST_NODE
#define CODEJUDGE_LIST_NODE

struct ListNode {
    int val;
    ListNode *next;
    ListNode() : val(0), next(nullptr) {}
    ListNode(int x) : val(x), next(nullptr) {}
    ListNode(int x, ListNode *next) : val(x), next(next) {}
};

#endif
`

const cppTreeNode = `#ifndef CODEJUDGE_TREE_NODE
#define CODEJUDGE_TREE_NODE

struct TreeNode {
    int val;
    TreeNode *left;
    TreeNode *right;
    TreeNode() : val(0), left(nullptr), right(nullptr) {}
    TreeNode(int x) : val(x), left(nullptr), right(nullptr) {}
    TreeNode(int x, TreeNode *left, TreeNode *right) : val(x), left(left), right(right) {}
};

#endif
`

const cppSolutionPrelude = `#include <bits/stdc++.h>
using namespace std;
#include "ListNode.cpp"
#include "TreeNode.cpp"

`

const cppHelpers = `
struct JValue {
    enum Kind { Null, Bool, Number, String, Array };
    Kind kind = Null;
    bool b = false;
    long long num = 0;
    string str;
    vector<JValue> arr;
};

struct JReader {
    const string& s;
    size_t i = 0;

    explicit JReader(const string& src) : s(src) {}

    [[noreturn]] void fail(const string& why) {
        throw runtime_error("cannot parse input: " + why + " at offset " + to_string(i));
    }

    void skip() {
        while (i < s.size() && isspace((unsigned char) s[i])) i++;
    }

    JValue read() {
        JValue v = value();
        skip();
        if (i != s.size()) fail("unexpected input");
        return v;
    }

    JValue value() {
        skip();
        if (i >= s.size()) fail("unexpected end of input");
        JValue v;
        char c = s[i];
        if (c == '[') {
            v.kind = JValue::Array;
            i++;
            skip();
            if (i < s.size() && s[i] == ']') {
                i++;
                return v;
            }
            while (true) {
                v.arr.push_back(value());
                skip();
                if (i >= s.size()) fail("unterminated array");
                char d = s[i++];
                if (d == ']') return v;
                if (d != ',') fail("expected ','");
            }
        }
        if (c == '"') {
            v.kind = JValue::String;
            v.str = text();
            return v;
        }
        if (s.compare(i, 4, "null") == 0) {
            i += 4;
            return v;
        }
        if (s.compare(i, 4, "true") == 0) {
            i += 4;
            v.kind = JValue::Bool;
            v.b = true;
            return v;
        }
        if (s.compare(i, 5, "false") == 0) {
            i += 5;
            v.kind = JValue::Bool;
            return v;
        }
        size_t start = i;
        if (s[i] == '-' || s[i] == '+') i++;
        while (i < s.size() && isdigit((unsigned char) s[i])) i++;
        if (i == start || !isdigit((unsigned char) s[i - 1])) fail("unexpected character");
        v.kind = JValue::Number;
        v.num = stoll(s.substr(start, i - start));
        return v;
    }

    unsigned hex4() {
        if (i + 4 > s.size()) fail("short unicode escape");
        unsigned cp = (unsigned) stoul(s.substr(i, 4), nullptr, 16);
        i += 4;
        return cp;
    }

    static void utf8(string& out, unsigned cp) {
        if (cp < 0x80) {
            out += (char) cp;
        } else if (cp < 0x800) {
            out += (char) (0xc0 | (cp >> 6));
            out += (char) (0x80 | (cp & 0x3f));
        } else if (cp < 0x10000) {
            out += (char) (0xe0 | (cp >> 12));
            out += (char) (0x80 | ((cp >> 6) & 0x3f));
            out += (char) (0x80 | (cp & 0x3f));
        } else {
            out += (char) (0xf0 | (cp >> 18));
            out += (char) (0x80 | ((cp >> 12) & 0x3f));
            out += (char) (0x80 | ((cp >> 6) & 0x3f));
            out += (char) (0x80 | (cp & 0x3f));
        }
    }

    string text() {
        string out;
        i++;
        while (i < s.size()) {
            char c = s[i++];
            if (c == '"') return out;
            if (c != '\\') {
                out += c;
                continue;
            }
            if (i >= s.size()) break;
            char e = s[i++];
            switch (e) {
                case 'n': out += '\n'; break;
                case 't': out += '\t'; break;
                case 'r': out += '\r'; break;
                case 'b': out += '\b'; break;
                case 'f': out += '\f'; break;
                case 'u': {
                    unsigned cp = hex4();
                    if (cp >= 0xd800 && cp < 0xdc00 && s.compare(i, 2, "\\u") == 0) {
                        i += 2;
                        unsigned lo = hex4();
                        cp = 0x10000 + ((cp - 0xd800) << 10) + (lo - 0xdc00);
                    }
                    utf8(out, cp);
                    break;
                }
                default: out += e;
            }
        }
        fail("unterminated string");
    }
};

static JValue parse_value(const string& s) {
    JReader r(s);
    return r.read();
}

static const vector<JValue>& as_array(const JValue& v) {
    if (v.kind != JValue::Array) throw runtime_error("expected an array");
    return v.arr;
}

static int as_int(const JValue& v) {
    if (v.kind == JValue::Number) {
        if (v.num < INT_MIN || v.num > INT_MAX) throw runtime_error("integer out of range");
        return (int) v.num;
    }
    if (v.kind == JValue::String) return stoi(v.str);
    throw runtime_error("expected an integer");
}

static string as_string(const JValue& v) {
    switch (v.kind) {
        case JValue::String: return v.str;
        case JValue::Number: return to_string(v.num);
        case JValue::Bool: return v.b ? "true" : "false";
        default: throw runtime_error("expected a string");
    }
}

static char as_char(const JValue& v) {
    string s = as_string(v);
    if (s.size() != 1) throw runtime_error("expected a single character");
    return s[0];
}

static int to_int(const string& s) { return as_int(parse_value(s)); }

static bool to_boolean(const string& s) {
    JValue v = parse_value(s);
    if (v.kind != JValue::Bool) throw runtime_error("expected a boolean");
    return v.b;
}

static vector<int> int_array(const JValue& v) {
    vector<int> out;
    for (const JValue& e : as_array(v)) out.push_back(as_int(e));
    return out;
}

static vector<int> to_int_array(const string& s) { return int_array(parse_value(s)); }

static vector<vector<int>> to_int_array_2d(const string& s) {
    JValue v = parse_value(s);
    vector<vector<int>> out;
    for (const JValue& row : as_array(v)) out.push_back(int_array(row));
    return out;
}

static vector<string> string_array(const JValue& v) {
    vector<string> out;
    for (const JValue& e : as_array(v)) out.push_back(as_string(e));
    return out;
}

static vector<string> to_string_array(const string& s) { return string_array(parse_value(s)); }

static vector<string> to_string_list(const string& s) { return string_array(parse_value(s)); }

static vector<vector<string>> to_string_list_2d(const string& s) {
    JValue v = parse_value(s);
    vector<vector<string>> out;
    for (const JValue& row : as_array(v)) out.push_back(string_array(row));
    return out;
}

static vector<vector<char>> to_char_array_2d(const string& s) {
    JValue v = parse_value(s);
    vector<vector<char>> out;
    for (const JValue& row : as_array(v)) {
        vector<char> r;
        for (const JValue& e : as_array(row)) r.push_back(as_char(e));
        out.push_back(r);
    }
    return out;
}

static ListNode* list_node(const JValue& v) {
    if (v.kind == JValue::Null) return nullptr;
    ListNode dummy;
    ListNode* tail = &dummy;
    for (const JValue& e : as_array(v)) {
        tail->next = new ListNode(as_int(e));
        tail = tail->next;
    }
    return dummy.next;
}

static ListNode* to_list_node(const string& s) { return list_node(parse_value(s)); }

static vector<ListNode*> to_list_node_array(const string& s) {
    JValue v = parse_value(s);
    vector<ListNode*> out;
    for (const JValue& e : as_array(v)) out.push_back(list_node(e));
    return out;
}

static TreeNode* to_tree_node(const string& s) {
    JValue v = parse_value(s);
    if (v.kind == JValue::Null) return nullptr;
    const vector<JValue>& a = as_array(v);
    if (a.empty() || a[0].kind == JValue::Null) return nullptr;
    TreeNode* root = new TreeNode(as_int(a[0]));
    queue<TreeNode*> q;
    q.push(root);
    size_t k = 1;
    while (!q.empty() && k < a.size()) {
        TreeNode* node = q.front();
        q.pop();
        if (k < a.size() && a[k].kind != JValue::Null) {
            node->left = new TreeNode(as_int(a[k]));
            q.push(node->left);
        }
        k++;
        if (k < a.size() && a[k].kind != JValue::Null) {
            node->right = new TreeNode(as_int(a[k]));
            q.push(node->right);
        }
        k++;
    }
    return root;
}

static string quote(const string& s) {
    string out = "\"";
    for (unsigned char c : s) {
        switch (c) {
            case '"': out += "\\\""; break;
            case '\\': out += "\\\\"; break;
            case '\n': out += "\\n"; break;
            case '\r': out += "\\r"; break;
            case '\t': out += "\\t"; break;
            case '\b': out += "\\b"; break;
            case '\f': out += "\\f"; break;
            default:
                if (c < 0x20) {
                    char buf[8];
                    snprintf(buf, sizeof buf, "\\u%04x", c);
                    out += buf;
                } else {
                    out += (char) c;
                }
        }
    }
    return out + "\"";
}

static string display_output(const string& s) { return quote(s); }
static string display_output(const char* s) { return quote(s); }
static string display_output(bool b) { return b ? "true" : "false"; }
static string display_output(char c) { return quote(string(1, c)); }

template <typename T>
static typename enable_if<is_integral<T>::value, string>::type display_output(T v) {
    return to_string(v);
}

static string display_output(double d) {
    ostringstream os;
    os << d;
    return os.str();
}

static string display_output(ListNode* head) {
    string out = "[";
    for (ListNode* p = head; p != nullptr; p = p->next) {
        if (p != head) out += ", ";
        out += to_string(p->val);
    }
    return out + "]";
}

static string display_output(TreeNode* root) {
    vector<string> values;
    queue<TreeNode*> q;
    q.push(root);
    while (!q.empty()) {
        TreeNode* node = q.front();
        q.pop();
        if (node == nullptr) {
            values.push_back("null");
            continue;
        }
        values.push_back(to_string(node->val));
        q.push(node->left);
        q.push(node->right);
    }
    while (!values.empty() && values.back() == "null") values.pop_back();
    string out = "[";
    for (size_t k = 0; k < values.size(); k++) {
        if (k > 0) out += ", ";
        out += values[k];
    }
    return out + "]";
}

static string display_output(const vector<bool>& v) {
    string out = "[";
    for (size_t k = 0; k < v.size(); k++) {
        if (k > 0) out += ", ";
        out += v[k] ? "true" : "false";
    }
    return out + "]";
}

template <typename T>
static string display_output(const vector<T>& v) {
    string out = "[";
    for (size_t k = 0; k < v.size(); k++) {
        if (k > 0) out += ", ";
        out += display_output(v[k]);
    }
    return out + "]";
}
`
