package pager

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ncw/directio"

	"revtree/pkg/page"
	"revtree/pkg/rerr"
)

// BlockSize is the aligned read unit for directio.OpenFile. Frames are
// variable-length rather than a fixed page body, so a persistent key
// addresses only the first block of a frame and longer frames spill
// into the following blocks.
const BlockSize = directio.BlockSize

// FileReader reads pages from a local resource file at block-aligned
// offsets, unbuffered (O_DIRECT) only when opened with useDirectIO.
type FileReader struct {
	file   *os.File
	logger *slog.Logger
}

// NewFileReader opens path for block-aligned reads. When useDirectIO
// is false it falls back to a regular buffered os.Open, e.g. for
// filesystems/tests where O_DIRECT isn't available.
func NewFileReader(path string, useDirectIO bool, logger *slog.Logger) (*FileReader, error) {
	var f *os.File
	var err error
	if useDirectIO {
		f, err = directio.OpenFile(path, os.O_RDONLY, 0)
	} else {
		f, err = os.Open(path)
	}
	if err != nil {
		return nil, rerr.WrapIO("opening resource file", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileReader{file: f, logger: logger}, nil
}

func (r *FileReader) ReadPage(ctx context.Context, kind page.Kind, persistentKey int64) (page.Page, error) {
	if persistentKey == page.NullID {
		return nil, rerr.InvalidArg("cannot read page at NULL_ID")
	}

	offset := persistentKey * int64(BlockSize)
	block := directio.AlignedBlock(BlockSize)
	n, err := r.file.ReadAt(block, offset)
	if err != nil && err != io.EOF {
		return nil, rerr.WrapIO(fmt.Sprintf("reading page %d", persistentKey), err)
	}
	if n < FrameHeaderSize {
		return nil, rerr.WrapIO(fmt.Sprintf("reading page %d", persistentKey), fmt.Errorf("short read: %d bytes", n))
	}

	length := binary.BigEndian.Uint32(block[8:12])
	total := FrameHeaderSize + int(length)

	var frame []byte
	if total <= n {
		frame = block[:total]
	} else {
		frame = make([]byte, total)
		copy(frame, block[:n])
		remaining := total - n
		extraBlocks := (remaining + BlockSize - 1) / BlockSize
		extra := directio.AlignedBlock(extraBlocks * BlockSize)
		if _, err := r.file.ReadAt(extra, offset+int64(BlockSize)); err != nil && err != io.EOF {
			return nil, rerr.WrapIO(fmt.Sprintf("reading page %d overflow", persistentKey), err)
		}
		copy(frame[n:], extra[:remaining])
	}

	r.logger.Debug("pager: read page", "kind", kind.String(), "key", persistentKey, "bytes", total)
	return decodeFrame(kind, frame)
}

func (r *FileReader) Close() error {
	return r.file.Close()
}
