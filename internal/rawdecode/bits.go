package rawdecode

import "github.com/kantuck/rawmosaic/internal/bitio"

// newBitReaderAt returns a bit reader positioned at the given byte offset
// within data, without Canon-style byte stuffing.
func newBitReaderAt(data []byte, offset int) *bitio.Reader {
	r := bitio.NewReader(data, false)
	r.Seek(offset)
	return r
}

// newStuffedBitReaderAt returns a bit reader positioned at offset with
// Canon-style byte stuffing enabled (every literal 0xff is followed by a
// discarded stuffing byte).
func newStuffedBitReaderAt(data []byte, offset int) *bitio.Reader {
	r := bitio.NewReader(data, true)
	r.Seek(offset)
	return r
}

// signExtend interprets the low `length` bits of raw as the lossless-JPEG
// style signed difference encoding shared by Canon and Nikon's codecs: a
// cleared top bit means the value lies in the negative half of the
// symmetric range around zero.
func signExtend(raw uint32, length int) int32 {
	diff := int32(raw)
	if length > 0 && diff&(1<<uint(length-1)) == 0 {
		diff -= 1<<uint(length) - 1
	}
	return diff
}
