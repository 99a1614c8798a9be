package pager

import (
	"os"

	"revtree/pkg/page"
	"revtree/pkg/rerr"
)

// WritePageAt frames, compresses and checksums p the same way ReadPage
// expects to find it, writing the result at the block persistentKey
// addresses. There is no writer transaction path here; this exists so
// fixture builders (internal/testutil) can lay out resources the reader
// can then exercise.
func WritePageAt(file *os.File, persistentKey int64, p page.Page) error {
	frame, err := encodeFrame(p)
	if err != nil {
		return err
	}
	blocks := (len(frame) + BlockSize - 1) / BlockSize
	if blocks == 0 {
		blocks = 1
	}
	padded := make([]byte, blocks*BlockSize)
	copy(padded, frame)
	if _, err := file.WriteAt(padded, persistentKey*int64(BlockSize)); err != nil {
		return rerr.WrapIO("writing page frame", err)
	}
	return nil
}
