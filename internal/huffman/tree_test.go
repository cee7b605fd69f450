package huffman

import (
	"testing"

	"github.com/kantuck/rawmosaic/internal/bitio"
)

// bitsToBytes packs an MSB-first string of '0'/'1' characters into bytes,
// padding the final byte with zero bits.
func bitsToBytes(bits string) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b == '1' {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

// TestBuild_WorkedExample checks a known canonical table end to end: a
// specification whose codes are
// 00->0x04, 010->0x03, 011->0x05, 100->0x06, 101->0x02, 1100->0x07,
// 1101->0x01, 11100->0x08, 11101->0x09, 11110->0x00, 111110->0x0a,
// 1111110->0x0b, 1111111->0xff.
func TestBuild_WorkedExample(t *testing.T) {
	lengths := [16]int{0, 1, 4, 2, 3, 1, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	leaves := []byte{0x04, 0x03, 0x05, 0x06, 0x02, 0x07, 0x01, 0x08, 0x09, 0x00, 0x0a, 0x0b, 0xff}

	tree, err := Build(lengths, leaves, MaxNodesFirst)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	cases := []struct {
		code string
		want byte
	}{
		{"00", 0x04},
		{"010", 0x03},
		{"011", 0x05},
		{"100", 0x06},
		{"101", 0x02},
		{"1100", 0x07},
		{"1101", 0x01},
		{"11100", 0x08},
		{"11101", 0x09},
		{"11110", 0x00},
		{"111110", 0x0a},
		{"1111110", 0x0b},
		{"1111111", 0xff},
	}

	var allBits string
	for _, c := range cases {
		allBits += c.code
	}
	r := bitio.NewReader(bitsToBytes(allBits), false)
	for _, c := range cases {
		got, err := tree.Decode(r)
		if err != nil {
			t.Fatalf("Decode(%s): %v", c.code, err)
		}
		if got != c.want {
			t.Errorf("Decode(%s) = %#x, want %#x", c.code, got, c.want)
		}
	}
}

func TestCanonTrees_AllTableIndexes(t *testing.T) {
	for idx := 0; idx <= 2; idx++ {
		first, second, err := CanonTrees(idx)
		if err != nil {
			t.Fatalf("CanonTrees(%d): %v", idx, err)
		}
		if len(first.nodes) == 0 || len(second.nodes) == 0 {
			t.Fatalf("CanonTrees(%d): empty tree", idx)
		}
	}
}

func TestCanonTrees_ClampsOutOfRangeIndex(t *testing.T) {
	// an index above 2 clamps to the last table, so a container carrying
	// a larger value still decodes.
	first, second, err := CanonTrees(7)
	if err != nil {
		t.Fatalf("CanonTrees(7): %v", err)
	}
	wantFirst, wantSecond, _ := CanonTrees(2)
	if len(first.nodes) != len(wantFirst.nodes) || len(second.nodes) != len(wantSecond.nodes) {
		t.Fatalf("CanonTrees(7) did not clamp to table 2")
	}
}

func TestNikonTree_Builds(t *testing.T) {
	tr, err := NikonTree()
	if err != nil {
		t.Fatalf("NikonTree: %v", err)
	}
	if len(tr.nodes) == 0 {
		t.Fatalf("NikonTree: empty tree")
	}
}
