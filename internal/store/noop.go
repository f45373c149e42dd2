package store

import "SignalScan/internal/model"

// NoopStore is used when no storage backend is configured: every read is a
// miss, so each request recomputes its signals.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Get(_, _ string) (*model.SignalRecord, bool) { return nil, false }

func (n *NoopStore) Put(_, _ string, _ *model.SignalRecord) error { return nil }

func (n *NoopStore) GetMany(symbols []string, _ string) *Partition {
	return &Partition{Missing: append([]string(nil), symbols...)}
}

func (n *NoopStore) PurgeOlderThan(_ int) (int, error) { return 0, nil }

func (n *NoopStore) Stats() (*Stats, error) { return &Stats{}, nil }

func (n *NoopStore) Close() error { return nil }
