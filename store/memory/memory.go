// Package memory provides a thread-safe in-memory implementation of
// store.Ledger. Suitable for testing, demos, and single-process use cases.
package memory

import (
	"math/big"
	"sort"
	"sync"

	"github.com/jmcleod/certsmith/store"
)

// Ledger is a mutex-guarded in-memory implementation of store.Ledger.
type Ledger struct {
	mu      sync.Mutex
	serials map[string]uint64
	records map[string][]store.IssuanceRecord
}

var _ store.Ledger = (*Ledger)(nil)

// NewLedger creates a new empty in-memory Ledger.
func NewLedger() *Ledger {
	return &Ledger{
		serials: make(map[string]uint64),
		records: make(map[string][]store.IssuanceRecord),
	}
}

// NextSerial returns the next unused serial for caID and advances the
// counter under the ledger mutex.
func (l *Ledger) NextSerial(caID string) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	serial, ok := l.serials[caID]
	if !ok {
		serial = store.FirstSerial
	}
	l.serials[caID] = serial + 1
	return new(big.Int).SetUint64(serial), nil
}

// Record stores an issuance record.
func (l *Ledger) Record(rec store.IssuanceRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[rec.CAID] = append(l.records[rec.CAID], rec)
	return nil
}

// List returns all issuance records for caID, oldest first.
func (l *Ledger) List(caID string) ([]store.IssuanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	recs := append([]store.IssuanceRecord(nil), l.records[caID]...)
	sort.Slice(recs, func(i, j int) bool { return recs[i].IssuedAt.Before(recs[j].IssuedAt) })
	return recs, nil
}
