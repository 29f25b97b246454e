// Package bbolt provides a BBolt-backed issuance ledger. BBolt takes an
// exclusive file lock on open and runs NextSerial inside a single write
// transaction, so sequential invocations of the CLI (or concurrent callers
// in a long-running process) never repeat a serial.
package bbolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/jmcleod/certsmith/store"
)

const (
	serialKey    = "serial:next"
	recordPrefix = "record:"
)

// Ledger implements store.Ledger backed by a BBolt database. Each CA gets
// its own bucket keyed by the CA fingerprint.
type Ledger struct {
	db *bbolt.DB
}

var _ store.Ledger = (*Ledger)(nil)

// NewLedger returns a Ledger backed by the given BBolt database.
func NewLedger(db *bbolt.DB) *Ledger {
	return &Ledger{db: db}
}

// NewLedgerFromFile opens a BBolt database at the given path and returns a
// new Ledger. The file is created if it does not exist.
func NewLedgerFromFile(path string, options *bbolt.Options) (*Ledger, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}
	return NewLedger(db), nil
}

// Close closes the underlying BBolt database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// NextSerial returns the next unused serial for caID and advances the
// counter, all within one write transaction. The counter is created at
// store.FirstSerial when the CA has no entry yet.
func (l *Ledger) NextSerial(caID string) (*big.Int, error) {
	var serial uint64
	err := l.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(caID))
		if err != nil {
			return err
		}
		serial = store.FirstSerial
		if data := b.Get([]byte(serialKey)); len(data) == 8 {
			serial = binary.BigEndian.Uint64(data)
		}
		next := make([]byte, 8)
		binary.BigEndian.PutUint64(next, serial+1)
		return b.Put([]byte(serialKey), next)
	})
	if err != nil {
		return nil, fmt.Errorf("advancing serial for %s: %w", caID, err)
	}
	return new(big.Int).SetUint64(serial), nil
}

// Record stores an issuance record under its CA bucket.
func (l *Ledger) Record(rec store.IssuanceRecord) error {
	return l.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(rec.CAID))
		if err != nil {
			return err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(recordPrefix+rec.ID), data)
	})
}

// List returns all issuance records for caID, oldest first.
func (l *Ledger) List(caID string) ([]store.IssuanceRecord, error) {
	var recs []store.IssuanceRecord
	err := l.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(caID))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		prefix := []byte(recordPrefix)
		for k, v := c.Seek(prefix); k != nil && len(k) > len(prefix) && string(k[:len(prefix)]) == recordPrefix; k, v = c.Next() {
			var rec store.IssuanceRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decoding record %s: %w", k, err)
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].IssuedAt.Before(recs[j].IssuedAt) })
	return recs, nil
}
