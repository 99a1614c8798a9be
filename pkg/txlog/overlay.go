// Package txlog implements the transaction log overlay: the read-time
// view of pages a sibling writer has produced but not yet merged into
// the data file. Entries are read from on-disk log files tail-first
// with github.com/icza/backscanner, playing the same log-replay role as
// a recovery manager's commit-log scan but reading forward-appended
// records from the end so the first entry seen for a key is its newest
// write. Open scans each file in full and indexes every key.
package txlog

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/icza/backscanner"
	"golang.org/x/sync/errgroup"

	"revtree/pkg/page"
	"revtree/pkg/rerr"
)

// CommitFileName marks that a sibling writer's on-disk logs are live;
// its presence at transaction construction enables both log overlays.
const CommitFileName = "COMMIT"

const (
	pageLogSuffix   = "page"
	recordLogSuffix = "node"
)

// recordLogKey is the record-page log's key: (page-kind, page-key, index).
type recordLogKey struct {
	Kind    page.Kind
	PageKey int64
	Index   int64
}

// Overlay holds every entry found in a resource's on-disk transaction
// log files, indexed for O(1) lookup by the read path.
type Overlay struct {
	pages      map[page.LogKey]page.Page
	records    map[recordLogKey]page.Container
	pageFile   *os.File
	recordFile *os.File
}

// CommitFilePresent reports whether dir carries the commit-file marker
// that enables the log overlay for a new transaction.
func CommitFilePresent(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, CommitFileName))
	return err == nil
}

// Open reads both log files under dir concurrently and returns the
// fully indexed overlay. Callers should only call Open when
// CommitFilePresent(dir) is true; malformed log files fail with IO.
func Open(ctx context.Context, dir, resourceName string) (*Overlay, error) {
	ov := &Overlay{
		pages:   make(map[page.LogKey]page.Page),
		records: make(map[recordLogKey]page.Container),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, entries, err := loadPageLog(filepath.Join(dir, resourceName+"."+pageLogSuffix))
		if err != nil {
			return err
		}
		ov.pageFile = f
		ov.pages = entries
		return nil
	})
	g.Go(func() error {
		f, entries, err := loadRecordLog(filepath.Join(dir, resourceName+"."+recordLogSuffix))
		if err != nil {
			return err
		}
		ov.recordFile = f
		ov.records = entries
		return nil
	})
	if err := g.Wait(); err != nil {
		ov.Close()
		return nil, rerr.WrapIO("opening transaction log overlay", err)
	}
	return ov, nil
}

// PageAt returns the page a sibling writer logged under logKey, if any.
func (o *Overlay) PageAt(logKey page.LogKey) (page.Page, bool) {
	if o == nil {
		return nil, false
	}
	p, ok := o.pages[logKey]
	return p, ok
}

// RecordContainer returns the container a sibling writer logged for
// (kind, pageKey, index). A found-but-empty result means the writer did
// not shadow this page and the caller must fall through to storage —
// which is indistinguishable here from "absent", so callers only need
// to branch on the returned bool.
func (o *Overlay) RecordContainer(kind page.Kind, pageKey, index int64) (page.Container, bool) {
	if o == nil {
		return page.Empty, false
	}
	c, ok := o.records[recordLogKey{Kind: kind, PageKey: pageKey, Index: index}]
	if ok && c.IsEmpty() {
		return page.Empty, false
	}
	return c, ok
}

// Clear discards cached entries without closing file handles.
func (o *Overlay) Clear() {
	if o == nil {
		return
	}
	o.pages = make(map[page.LogKey]page.Page)
	o.records = make(map[recordLogKey]page.Container)
}

// Close releases the overlay's file handles.
func (o *Overlay) Close() error {
	if o == nil {
		return nil
	}
	var err error
	if o.pageFile != nil {
		err = o.pageFile.Close()
	}
	if o.recordFile != nil {
		if cerr := o.recordFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// loadPageLog reads lines of the form
//
//	<kind> <index> <level> <position> <base64(EncodePage(kind, payload))>
//
// tail-first, keeping only the first (i.e. newest) entry per log key.
func loadPageLog(path string) (*os.File, map[page.LogKey]page.Page, error) {
	f, info, err := openLog(path)
	if err != nil {
		return nil, nil, err
	}
	entries := make(map[page.LogKey]page.Page)
	scanner := backscanner.New(f, int(info.Size()))
	for {
		line, _, err := scanner.Line()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, fmt.Errorf("scanning page log %s: %w", path, err)
		}
		fields := strings.SplitN(line, " ", 5)
		if len(fields) != 5 {
			continue
		}
		kind, err1 := strconv.ParseInt(fields[0], 10, 64)
		index, err2 := strconv.ParseInt(fields[1], 10, 64)
		level, err3 := strconv.ParseInt(fields[2], 10, 64)
		position, err4 := strconv.ParseInt(fields[3], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, nil, fmt.Errorf("malformed page log entry in %s", path)
		}
		logKey := page.LogKey{Kind: page.Kind(kind), Index: index, Level: int(level), Position: position}
		if _, seen := entries[logKey]; seen {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(fields[4])
		if err != nil {
			return nil, nil, fmt.Errorf("malformed page log payload in %s: %w", path, err)
		}
		p, err := page.DecodePage(page.Kind(kind), raw)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding page log payload in %s: %w", path, err)
		}
		entries[logKey] = p
	}
	return f, entries, nil
}

// loadRecordLog reads lines of the form
//
//	<kind> <pageKey> <index> <base64(EncodePage(RECORDPAGE, fragment))>
//
// tail-first, keeping only the newest entry per (kind, pageKey, index).
func loadRecordLog(path string) (*os.File, map[recordLogKey]page.Container, error) {
	f, info, err := openLog(path)
	if err != nil {
		return nil, nil, err
	}
	entries := make(map[recordLogKey]page.Container)
	scanner := backscanner.New(f, int(info.Size()))
	for {
		line, _, err := scanner.Line()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, fmt.Errorf("scanning record log %s: %w", path, err)
		}
		fields := strings.SplitN(line, " ", 4)
		if len(fields) != 4 {
			continue
		}
		kind, err1 := strconv.ParseInt(fields[0], 10, 64)
		pageKey, err2 := strconv.ParseInt(fields[1], 10, 64)
		index, err3 := strconv.ParseInt(fields[2], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, nil, fmt.Errorf("malformed record log entry in %s", path)
		}
		key := recordLogKey{Kind: page.Kind(kind), PageKey: pageKey, Index: index}
		if _, seen := entries[key]; seen {
			continue
		}
		if fields[3] == "EMPTY" {
			entries[key] = page.Empty
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(fields[3])
		if err != nil {
			return nil, nil, fmt.Errorf("malformed record log payload in %s: %w", path, err)
		}
		fragment, err := page.DecodePage(page.RecordPageKind, raw)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding record log payload in %s: %w", path, err)
		}
		entries[key] = page.Container{Fragment: fragment.(*page.RecordPage)}
	}
	return f, entries, nil
}

func openLog(path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stating %s: %w", path, err)
	}
	return f, info, nil
}

// WriteLogLine appends one page-log entry in loadPageLog's line format,
// for fixture builders and writer-side log maintenance.
func WriteLogLine(w *bufio.Writer, logKey page.LogKey, p page.Page) error {
	raw, err := page.EncodePage(p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%d %d %d %d %s\n",
		logKey.Kind, logKey.Index, logKey.Level, logKey.Position,
		base64.StdEncoding.EncodeToString(raw))
	return err
}

// WriteRecordLogLine appends one record-page-log entry in
// loadRecordLog's line format.
func WriteRecordLogLine(w *bufio.Writer, kind page.Kind, pageKey, index int64, fragment *page.RecordPage) error {
	if fragment == nil {
		_, err := fmt.Fprintf(w, "%d %d %d EMPTY\n", kind, pageKey, index)
		return err
	}
	raw, err := page.EncodePage(fragment)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%d %d %d %s\n", kind, pageKey, index, base64.StdEncoding.EncodeToString(raw))
	return err
}
