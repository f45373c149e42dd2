package store

import "SignalScan/internal/model"

// Partition splits a requested symbol set into cache hits and misses.
// Input order is preserved within each side; the two sides never overlap and
// together cover the de-duplicated request set.
type Partition struct {
	Cached  []*model.SignalRecord
	Missing []string
}

// Stats describes the persisted signal set.
type Stats struct {
	TotalRecords     int   `json:"totalRecords"`
	UniqueSymbols    int   `json:"uniqueSymbols"`
	RecordsToday     int   `json:"recordsToday"`
	StorageSizeBytes int64 `json:"storageSizeBytes"`
}

// SignalStore persists at most one SignalRecord per (symbol, date). Put is a
// wholesale upsert; concurrent writers for the same key are last-write-wins.
//
// Read failures degrade to a miss instead of surfacing an error: recomputing
// a signal is always safe, so correctness never depends on the cache being
// readable. This is deliberate — do not promote read failures to hard errors.
type SignalStore interface {
	Get(symbol, date string) (*model.SignalRecord, bool)
	Put(symbol, date string, rec *model.SignalRecord) error
	GetMany(symbols []string, date string) *Partition
	PurgeOlderThan(days int) (int, error)
	Stats() (*Stats, error)
	Close() error
}
