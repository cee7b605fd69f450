package rawdecode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kantuck/rawmosaic/internal/bitio"
	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/huffman"
	"github.com/kantuck/rawmosaic/internal/mosaic"
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

// TestCanonBlockDecoder_FirstSampleScenario reproduces the seed scenario:
// table_index=0's first tree encodes leaf 0x04 ("00"), followed by a
// 4-bit positive raw value ("1010": sign bit set, magnitude 010 = 2, so
// diff = 2+(1<<3) = 10), then the second tree's leaf 0x00 ("111111011")
// terminates the block early. The first sample must come out to 522
// (predictor reset to 512, plus the differential 10).
func TestCanonBlockDecoder_FirstSampleScenario(t *testing.T) {
	first, second, err := huffman.CanonTrees(0)
	if err != nil {
		t.Fatalf("CanonTrees(0): %v", err)
	}

	bits := "00" + "1010" + "111111011"
	br := bitio.NewReader(bitsToBytes(bits), true)

	dec := newCanonBlockDecoder(br, first, second, 8)
	out, err := dec.next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if out[0] != 522 {
		t.Errorf("first sample = %d, want 522 (512+10)", out[0])
	}
}

// TestCanonBlockDecoder_CarryCarriesAcrossBlocks checks that the carry
// added to a block's first difference is itself updated to that block's
// (post-carry) first difference, so a second block sees the first
// block's accumulated value.
func TestCanonBlockDecoder_CarryCarriesAcrossBlocks(t *testing.T) {
	first, second, err := huffman.CanonTrees(0)
	if err != nil {
		t.Fatalf("CanonTrees(0): %v", err)
	}

	block := "00" + "1010" + "111111011"
	br := bitio.NewReader(bitsToBytes(block+block), true)
	dec := newCanonBlockDecoder(br, first, second, 64)

	first1, err := dec.next()
	if err != nil {
		t.Fatalf("next (block 1): %v", err)
	}
	if dec.carry != 10 {
		t.Fatalf("carry after block 1 = %d, want 10", dec.carry)
	}
	if first1[0] != 522 {
		t.Fatalf("block 1 sample 0 = %d, want 522", first1[0])
	}

	second1, err := dec.next()
	if err != nil {
		t.Fatalf("next (block 2): %v", err)
	}
	// Block 2's raw first differential is again 10, plus the carried-over
	// 10 from block 1; pixel 64 is a multiple of rawWidth=64, so the
	// predictor resets to 512 first.
	if second1[0] != 512+20 {
		t.Errorf("block 2 sample 0 = %d, want %d", second1[0], 512+20)
	}
}

// TestDecodeFoveonPayload_AllZeroScenario reproduces the seed scenario: a
// payload where every difference resolves through a two-bit code to leaf
// 512 (whose table entry is 0), so every predictor stays at zero and the
// decoded image is entirely unwritten (all-zero).
func TestDecodeFoveonPayload_AllZeroScenario(t *testing.T) {
	const rawWidth, rawHeight = 2, 2
	const tableOffset = 260
	const codesOff = tableOffset + 1024*2
	const bitOff = tableOffset + 1024*6

	data := make([]byte, bitOff+3)
	// diff[512] defaults to 0; codes[512] is the only defined code, a
	// 2-bit "10".
	val := uint32(2<<27) | 0b10
	data[codesOff+512*4+0] = byte(val)
	data[codesOff+512*4+1] = byte(val >> 8)
	data[codesOff+512*4+2] = byte(val >> 16)
	data[codesOff+512*4+3] = byte(val >> 24)

	var bits string
	for i := 0; i < rawWidth*rawHeight*3; i++ {
		bits += "10"
	}
	copy(data[bitOff:], bitsToBytes(bits))

	dst := mosaic.New(rawWidth, rawHeight)
	in := Input{RawWidth: rawWidth, RawHeight: rawHeight}

	res, err := decodeFoveonPayload(data, dst, in)
	if err != nil {
		t.Fatalf("decodeFoveonPayload: %v", err)
	}
	if !res.ClearsFilters {
		t.Errorf("expected ClearsFilters, the Foveon payload writes full RGB directly")
	}
	for i, site := range dst.Pix {
		if site != (mosaic.Site{}) {
			t.Errorf("site %d = %v, want all-zero", i, site)
		}
	}
}

// TestDecodePacked12_RoundTrip packs two 12-bit samples back to back and
// checks they come out left-shifted 2 bits into the working headroom.
func TestDecodePacked12_RoundTrip(t *testing.T) {
	dst := mosaic.New(2, 1) // width=2, height=1
	fc := cfa.Descriptor(cfa.BayerRGGB)
	in := Input{Filters: uint32(cfa.BayerRGGB)}

	bits := fmt.Sprintf("%012b%012b", 1, 2047)
	res, err := decodePacked12(bitsToBytes(bits), dst, in)
	if err != nil {
		t.Fatalf("decodePacked12: %v", err)
	}
	if res.HasBlack {
		t.Errorf("packed-12 has no black border to report")
	}

	c0, c1 := fc.FC(0, 0), fc.FC(0, 1)
	if got := dst.At(0, 0)[c0]; got != 1<<2 {
		t.Errorf("sample 0 = %d, want %d", got, 1<<2)
	}
	if got := dst.At(0, 1)[c1]; got != 2047<<2 {
		t.Errorf("sample 1 = %d, want %d", got, 2047<<2)
	}
}

// TestDecodePacked12_Truncated checks that an undersized payload reports
// ErrTruncated rather than panicking or silently zero-filling.
func TestDecodePacked12_Truncated(t *testing.T) {
	dst := mosaic.New(4, 4)
	in := Input{Filters: uint32(cfa.BayerRGGB)}
	_, err := decodePacked12(nil, dst, in)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("decodePacked12(nil) = %v, want ErrTruncated", err)
	}
}

// TestDecodeKodakEasy_BorderFeedsBlackEstimate exercises the 2-column
// symmetric-margin case, whose border pixels seed the black-level
// estimate the scale stage later subtracts.
func TestDecodeKodakEasy_BorderFeedsBlackEstimate(t *testing.T) {
	dst := mosaic.New(2, 1) // cropped width=2, height=1
	in := Input{RawWidth: 6, Filters: uint32(cfa.BayerRGGB)}
	data := []byte{1, 2, 10, 20, 3, 4}

	res, err := decodeKodakEasy(data, dst, in)
	if err != nil {
		t.Fatalf("decodeKodakEasy: %v", err)
	}
	if !res.HasBlack {
		t.Fatalf("expected a black-level estimate from the 2-pixel margin")
	}
	wantBlack := int((int64(1+2+3+4) << 6) / 4)
	if res.Black != wantBlack {
		t.Errorf("Black = %d, want %d", res.Black, wantBlack)
	}

	fc := cfa.Descriptor(in.Filters)
	c0, c1 := fc.FC(0, 0), fc.FC(0, 1)
	if got := dst.At(0, 0)[c0]; got != 10<<6 {
		t.Errorf("site(0,0) = %d, want %d", got, 10<<6)
	}
	if got := dst.At(0, 1)[c1]; got != 20<<6 {
		t.Errorf("site(0,1) = %d, want %d", got, 20<<6)
	}
}

// TestRegistry_DecodeDispatchesByKind checks that Decode routes to the
// registered decoder for a given Kind rather than requiring callers to
// know the underlying function.
func TestRegistry_DecodeDispatchesByKind(t *testing.T) {
	dst := mosaic.New(2, 1)
	in := Input{Filters: uint32(cfa.BayerRGGB)}
	bits := fmt.Sprintf("%012b%012b", 5, 6)

	_, err := Decode(KindPacked12, bitsToBytes(bits), dst, in)
	if err != nil {
		t.Fatalf("Decode(KindPacked12): %v", err)
	}
	fc := cfa.Descriptor(in.Filters)
	if got := dst.At(0, 0)[fc.FC(0, 0)]; got != 5<<2 {
		t.Errorf("Decode(KindPacked12) site(0,0) = %d, want %d", got, 5<<2)
	}
}

// TestRegistry_DecodeUnknownKind reports ErrUnsupportedFormat for a Kind
// with no registered decoder.
func TestRegistry_DecodeUnknownKind(t *testing.T) {
	dst := mosaic.New(1, 1)
	_, err := Decode(Kind(999), nil, dst, Input{})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Decode(unknown kind) = %v, want ErrUnsupportedFormat", err)
	}
}

// TestLosslessJPEGExternal_NoDecoderSupplied checks that a profile naming
// the lossless-JPEG decoder kind without a supplied collaborator reports
// ErrUnsupportedFormat rather than panicking on a nil interface call.
func TestLosslessJPEGExternal_NoDecoderSupplied(t *testing.T) {
	dst := mosaic.New(1, 1)
	_, err := Decode(KindLosslessJPEG, nil, dst, Input{Model: "EOS-1D"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Decode(KindLosslessJPEG) = %v, want ErrUnsupportedFormat", err)
	}
}
