package harness

const pythonListNode = `class ListNode:
    def __init__(self, val=0, next=None):
        self.val = val
        self.next = next
`

const pythonTreeNode = `class TreeNode:
    def __init__(self, val=0, left=None, right=None):
        self.val = val
        self.left = left
        self.right = right
`

const pythonSolutionPrelude = `from typing import *
import collections
import heapq
import math
from ListNode import ListNode
from TreeNode import TreeNode

`

const pythonHelpers = `
def _parse(s):
    return json.loads(s)


def _array(v):
    if not isinstance(v, list):
        raise ValueError('expected an array, got %r' % (v,))
    return v


def _int(v):
    if isinstance(v, bool) or not isinstance(v, (int, str)):
        raise ValueError('expected an integer, got %r' % (v,))
    return int(v)


def to_int(s):
    return _int(_parse(s))


def to_boolean(s):
    v = _parse(s)
    if not isinstance(v, bool):
        raise ValueError('expected a boolean, got %r' % (s,))
    return v


def to_string(s):
    t = s.strip()
    if t.startswith('"'):
        try:
            v = json.loads(t)
            if isinstance(v, str):
                return v
        except ValueError:
            pass
    return s


def to_int_array(s):
    return [_int(x) for x in _array(_parse(s))]


def to_int_array_2d(s):
    return [[_int(x) for x in _array(row)] for row in _array(_parse(s))]


to_int_list = to_int_array
to_int_list_2d = to_int_array_2d


def to_string_array(s):
    return [x if isinstance(x, str) else json.dumps(x) for x in _array(_parse(s))]


to_string_list = to_string_array


def to_string_list_2d(s):
    return [[x if isinstance(x, str) else json.dumps(x) for x in _array(row)] for row in _array(_parse(s))]


def to_char_array_2d(s):
    rows = to_string_list_2d(s)
    for row in rows:
        for c in row:
            if len(c) != 1:
                raise ValueError('expected a single character, got %r' % (c,))
    return rows


def _list_node(v):
    if v is None:
        return None
    dummy = ListNode(0)
    tail = dummy
    for x in _array(v):
        tail.next = ListNode(_int(x))
        tail = tail.next
    return dummy.next


def to_list_node(s):
    return _list_node(_parse(s))


def to_list_node_array(s):
    return [_list_node(v) for v in _array(_parse(s))]


def to_tree_node(s):
    v = _parse(s)
    if v is None:
        return None
    values = _array(v)
    if not values or values[0] is None:
        return None
    root = TreeNode(_int(values[0]))
    queue = collections.deque([root])
    k = 1
    while queue and k < len(values):
        node = queue.popleft()
        if k < len(values) and values[k] is not None:
            node.left = TreeNode(_int(values[k]))
            queue.append(node.left)
        k += 1
        if k < len(values) and values[k] is not None:
            node.right = TreeNode(_int(values[k]))
            queue.append(node.right)
        k += 1
    return root


def _is_list_node(x):
    return hasattr(x, 'val') and hasattr(x, 'next') and not hasattr(x, 'left')


def _is_tree_node(x):
    return hasattr(x, 'val') and hasattr(x, 'left') and hasattr(x, 'right')


def _display_tree(root):
    values = []
    queue = collections.deque([root])
    while queue:
        node = queue.popleft()
        if node is None:
            values.append('null')
            continue
        values.append(str(node.val))
        queue.append(node.left)
        queue.append(node.right)
    while values and values[-1] == 'null':
        values.pop()
    return '[' + ', '.join(values) + ']'


def display_output(x, node_null=False):
    if x is None:
        return '[]' if node_null else 'null'
    if isinstance(x, bool):
        return 'true' if x else 'false'
    if isinstance(x, str):
        return json.dumps(x, ensure_ascii=False)
    if _is_list_node(x):
        values = []
        while x is not None:
            values.append(str(x.val))
            x = x.next
        return '[' + ', '.join(values) + ']'
    if _is_tree_node(x):
        return _display_tree(x)
    if isinstance(x, (list, tuple)):
        return '[' + ', '.join(display_output(e, node_null) for e in x) + ']'
    return str(x)
`
