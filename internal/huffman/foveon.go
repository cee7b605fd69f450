package huffman

import "fmt"

// foveonMaxDepth bounds construction depth at 27, the widest prefix the
// (length<<27)|code node key has room to express.
const foveonMaxDepth = 27

// foveonNodeBudget caps total node allocation so a malformed or
// adversarial difference table cannot force an unbounded trie.
const foveonNodeBudget = 1 << 16

type foveonNode struct {
	branch [2]int32
	leaf   int32
	isLeaf bool
}

// FoveonTree is the prefix tree the Foveon payload decoder walks to
// recover a difference-table index per symbol. Unlike Tree, it is built
// from a flat table of 32-bit canonical codes rather than a bit-length
// histogram.
type FoveonTree struct {
	nodes []foveonNode
}

// BuildFoveonTree constructs the prefix tree for the given 1024-entry
// table of canonical codes. Each produced leaf stores the index i such
// that codes[i] matches the bit path from the root.
//
// Construction walks an explicit stack of (length<<27)|code node
// identifiers rather than recursing, so depth is bounded by the key's
// 27-bit code space, not the call stack. A prefix that no code in the
// table extends is left as a dead branch instead of being expanded.
func BuildFoveonTree(codes [1024]uint32) (*FoveonTree, error) {
	t := &FoveonTree{}
	root := t.alloc()

	type job struct {
		idx  int32
		code uint32
	}
	stack := []job{{idx: root, code: 0}}

	for len(stack) > 0 {
		j := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if j.code != 0 {
			if leaf, ok := findFoveonCode(codes, j.code); ok {
				t.nodes[j.idx].leaf = int32(leaf)
				t.nodes[j.idx].isLeaf = true
				continue
			}
		}

		length := j.code >> 27
		if length > foveonMaxDepth-1 {
			// Dead branch: no code in the table matches any path through
			// here. Leave the node as a non-leaf fork with no children;
			// Decode will report a malformed-stream error if it is ever
			// reached.
			continue
		}
		// Dead branch as well when no table code has this prefix.
		live := false
		for _, c := range codes {
			cl := c >> 27
			if cl > length && (c&0x7ffffff)>>(cl-length) == j.code&0x3ffffff {
				live = true
				break
			}
		}
		if !live {
			continue
		}
		if len(t.nodes)+2 > foveonNodeBudget {
			return nil, fmt.Errorf("huffman: foveon tree exceeded node budget")
		}
		next := (length+1)<<27 | (j.code & 0x3ffffff) << 1
		b0 := t.alloc()
		b1 := t.alloc()
		t.nodes[j.idx].branch = [2]int32{b0, b1}
		// Push branch1 first so branch0 is processed next (stack is LIFO),
		// keeping construction depth-first with branch0 before branch1.
		stack = append(stack, job{idx: b1, code: next + 1})
		stack = append(stack, job{idx: b0, code: next})
	}
	return t, nil
}

func (t *FoveonTree) alloc() int32 {
	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, foveonNode{})
	return idx
}

func findFoveonCode(codes [1024]uint32, code uint32) (int, bool) {
	for i, c := range codes {
		if c == code {
			return i, true
		}
	}
	return 0, false
}

// Decode walks r one bit at a time until a leaf is reached and returns
// its difference-table index.
func (t *FoveonTree) Decode(r bitSource) (int, error) {
	idx := int32(0)
	for {
		if int(idx) >= len(t.nodes) {
			return 0, fmt.Errorf("huffman: foveon decode walked off the tree")
		}
		n := &t.nodes[idx]
		if n.isLeaf {
			return int(n.leaf), nil
		}
		if n.branch[0] == 0 && n.branch[1] == 0 && idx != 0 {
			return 0, fmt.Errorf("huffman: foveon decode hit a dead branch")
		}
		if r.Truncated() {
			return 0, fmt.Errorf("huffman: truncated input mid-decode")
		}
		idx = n.branch[r.Take(1)]
	}
}
