// Package store provides the persistence abstraction for per-CA serial
// counters and issuance records.
package store

import (
	"errors"
	"math/big"
	"time"
)

// ErrNotFound is returned when the referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// FirstSerial is the serial number handed out for the first leaf issued by a
// CA. Serial 1 is reserved for the CA certificate itself.
const FirstSerial = 2

// IssuanceRecord captures one certificate issuance for audit purposes.
// Serial numbers are stored as lowercase hex.
type IssuanceRecord struct {
	ID          string    `json:"id"`
	CAID        string    `json:"ca_id"`
	Serial      string    `json:"serial"`
	CommonName  string    `json:"common_name"`
	DNSNames    []string  `json:"dns_names,omitempty"`
	IPAddresses []string  `json:"ip_addresses,omitempty"`
	NotBefore   time.Time `json:"not_before"`
	NotAfter    time.Time `json:"not_after"`
	IssuedAt    time.Time `json:"issued_at"`
}

// Ledger tracks serial numbers and issuance records per CA. A caID is the
// hex SHA-256 fingerprint of the CA certificate, so distinct CAs never share
// a counter even when they share a ledger file.
//
// NextSerial must behave as an atomic read-modify-write: every call returns
// a serial distinct from all previous calls for the same caID, even under
// concurrent callers.
type Ledger interface {
	NextSerial(caID string) (*big.Int, error)
	Record(rec IssuanceRecord) error
	List(caID string) ([]IssuanceRecord, error)
}
