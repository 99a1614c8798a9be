// Package config collects the ambient knobs every other package reads
// instead of hard-coding: cache sizing, the versioning policy, I/O mode
// and logging.
package config

import (
	"log/slog"
	"time"

	"revtree/pkg/revision"
)

// Name identifies the resource store in CLI output and log lines.
const Name = "revtree"

// Pager/buffer sizing: separate page- and record-page-cache budgets,
// since the two tiers are sized and evicted independently.
const (
	DefaultPageCacheCapacity       = 4096
	DefaultRecordPageCacheCapacity = 1024
	DefaultBufferShardCount        = 16
)

// Per-transaction container cache sizing.
const (
	DefaultContainerCacheCapacity = 10_000
	DefaultContainerIdleTTL       = 5_000 * time.Second
	DefaultContainerTotalTTL      = 5_000 * time.Second
)

// Config bundles everything a transaction, the buffer manager and the
// log overlay need to open a resource at a revision.
type Config struct {
	// Path is the resource directory root: it contains the uber page,
	// revision-root chain, transaction-log files and, optionally, a
	// commit-file marker and index-definition documents.
	Path string

	// RevisionKind selects the versioning policy fragments were written
	// under; it must match what the writer used or reconstruction
	// silently reads a wrong view.
	RevisionKind revision.Kind

	// RevisionsToRestore bounds how many previous-reference hops the
	// reconstructor walks before giving up.
	RevisionsToRestore int

	PageCacheCapacity       int
	RecordPageCacheCapacity int
	BufferShardCount        int

	ContainerCacheCapacity int
	ContainerIdleTTL       time.Duration
	ContainerTotalTTL      time.Duration

	// UseDirectIO selects unbuffered, block-aligned reads for the file
	// reader (pkg/pager); off by default since it requires the
	// underlying filesystem to support O_DIRECT.
	UseDirectIO bool

	Logger *slog.Logger
}

// Default returns a Config with every ambient knob at a sensible
// default, reading resources at path under the full versioning policy.
func Default(path string) *Config {
	return &Config{
		Path:                    path,
		RevisionKind:            revision.Full{},
		RevisionsToRestore:      1,
		PageCacheCapacity:       DefaultPageCacheCapacity,
		RecordPageCacheCapacity: DefaultRecordPageCacheCapacity,
		BufferShardCount:        DefaultBufferShardCount,
		ContainerCacheCapacity:  DefaultContainerCacheCapacity,
		ContainerIdleTTL:        DefaultContainerIdleTTL,
		ContainerTotalTTL:       DefaultContainerTotalTTL,
		Logger:                  slog.Default(),
	}
}

// WithRevisionKind swaps the versioning policy, e.g. to open a resource
// written under the incremental or sliding-snapshot policy.
func (c *Config) WithRevisionKind(kind revision.Kind, revisionsToRestore int) *Config {
	c.RevisionKind = kind
	c.RevisionsToRestore = revisionsToRestore
	return c
}
