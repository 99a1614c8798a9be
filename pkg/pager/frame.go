package pager

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/klauspost/compress/zstd"

	"revtree/pkg/page"
	"revtree/pkg/rerr"
)

// FrameHeaderSize is the fixed prefix every stored frame carries ahead
// of its zstd-compressed payload: an 8-byte xxhash checksum of the
// compressed bytes followed by their 4-byte length, sized for a
// variable payload instead of a constant page size.
const FrameHeaderSize = 8 + 4

var decoder, _ = zstd.NewReader(nil)
var encoder, _ = zstd.NewWriter(nil)

// encodeFrame compresses and checksums a decoded page's wire bytes.
func encodeFrame(p page.Page) ([]byte, error) {
	raw, err := page.EncodePage(p)
	if err != nil {
		return nil, rerr.WrapIO("encoding page", err)
	}
	compressed := encoder.EncodeAll(raw, nil)

	frame := make([]byte, FrameHeaderSize+len(compressed))
	binary.BigEndian.PutUint64(frame[0:8], xxhash.Sum64(compressed))
	binary.BigEndian.PutUint32(frame[8:12], uint32(len(compressed)))
	copy(frame[FrameHeaderSize:], compressed)
	return frame, nil
}

// decodeFrame verifies and decompresses a stored frame, then decodes
// the resulting bytes as kind.
func decodeFrame(kind page.Kind, frame []byte) (page.Page, error) {
	if len(frame) < FrameHeaderSize {
		return nil, rerr.WrapIO("decoding page frame", fmt.Errorf("short frame: %d bytes", len(frame)))
	}
	checksum := binary.BigEndian.Uint64(frame[0:8])
	length := binary.BigEndian.Uint32(frame[8:12])
	if FrameHeaderSize+int(length) > len(frame) {
		return nil, rerr.WrapIO("decoding page frame", fmt.Errorf("frame length %d exceeds buffer", length))
	}
	compressed := frame[FrameHeaderSize : FrameHeaderSize+int(length)]
	if xxhash.Sum64(compressed) != checksum {
		return nil, rerr.WrapIO("decoding page frame", fmt.Errorf("checksum mismatch"))
	}

	raw, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, rerr.WrapIO("decompressing page frame", err)
	}
	decoded, err := page.DecodePage(kind, raw)
	if err != nil {
		return nil, rerr.WrapIO("decoding page", err)
	}
	return decoded, nil
}
