package ca

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"sync"
)

// ---------------------------------------------------------------------------
// SoftwareKeyStore: default implementation backed by in-memory RSA keys
// ---------------------------------------------------------------------------

// SoftwareKeyStore holds RSA private keys in memory. Keys are identified by
// an opaque string generated at creation time. This is the default KeyStore
// used when no HSM/KMS is configured.
//
// Keys in this store are transient: the engine exports the material it
// returns to callers and deletes the store entry when issuance finishes.
// Safe for concurrent use.
type SoftwareKeyStore struct {
	mu   sync.Mutex
	keys map[string]*rsa.PrivateKey
	rand io.Reader // defaults to crypto/rand.Reader
	seq  int       // monotonic counter for key IDs
}

// Compile-time interface check.
var _ KeyStore = (*SoftwareKeyStore)(nil)

// NewSoftwareKeyStore returns a SoftwareKeyStore ready for use.
func NewSoftwareKeyStore() *SoftwareKeyStore {
	return &SoftwareKeyStore{
		keys: make(map[string]*rsa.PrivateKey),
		rand: rand.Reader,
	}
}

func (s *SoftwareKeyStore) nextID() string {
	s.seq++
	return fmt.Sprintf("sw-%d", s.seq)
}

// GenerateKey creates a new RSA key pair of the given bit size.
func (s *SoftwareKeyStore) GenerateKey(bits int) (string, error) {
	priv, err := rsa.GenerateKey(s.rand, bits)
	if err != nil {
		return "", fmt.Errorf("generating RSA-%d key: %w", bits, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	s.keys[id] = priv
	return id, nil
}

// Signer returns the *rsa.PrivateKey (which implements crypto.Signer).
func (s *SoftwareKeyStore) Signer(keyID string) (crypto.Signer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	priv, ok := s.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, keyID)
	}
	return priv, nil
}

// ExportPEM encodes the private key as PKCS#8 "PRIVATE KEY" PEM.
func (s *SoftwareKeyStore) ExportPEM(keyID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	priv, ok := s.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, keyID)
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// ImportPEM parses an RSA private key PEM block and stores it.
func (s *SoftwareKeyStore) ImportPEM(pemData []byte) (string, error) {
	priv, err := parseRSAPrivateKeyPEM(pemData)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	s.keys[id] = priv
	return id, nil
}

// Delete removes the key from memory.
func (s *SoftwareKeyStore) Delete(keyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, keyID)
	return nil
}

// parseRSAPrivateKeyPEM accepts PKCS#8 "PRIVATE KEY" and PKCS#1
// "RSA PRIVATE KEY" blocks.
func parseRSAPrivateKeyPEM(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrInvalidParameter)
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
		}
		return priv, nil
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
		}
		priv, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA key", ErrInvalidParameter)
		}
		return priv, nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM type %q", ErrInvalidParameter, block.Type)
	}
}
