//go:build !pkcs11

package ca

import (
	"crypto"
	"fmt"
)

// PKCS11Config holds the configuration for connecting to a PKCS#11 token.
// This is a placeholder when the pkcs11 build tag is not set.
type PKCS11Config struct {
	ModulePath string
	TokenLabel string
	PIN        string
}

// PKCS11KeyStore is a placeholder type when the pkcs11 build tag is not set.
// It implements KeyStore so that callers compile without CGo, but all
// methods report the capability as missing.
type PKCS11KeyStore struct{}

// Compile-time interface check.
var _ KeyStore = (*PKCS11KeyStore)(nil)

// NewPKCS11KeyStore returns an error when compiled without the pkcs11 build
// tag. Rebuild with: go build -tags pkcs11
func NewPKCS11KeyStore(_ PKCS11Config) (*PKCS11KeyStore, error) {
	return nil, fmt.Errorf("%w: PKCS#11 support not compiled; rebuild with: go build -tags pkcs11", ErrPrerequisiteMissing)
}

// Close is a no-op for the stub.
func (p *PKCS11KeyStore) Close() error { return nil }

func (p *PKCS11KeyStore) GenerateKey(bits int) (string, error) {
	return "", fmt.Errorf("%w: PKCS#11 support not compiled", ErrPrerequisiteMissing)
}

func (p *PKCS11KeyStore) Signer(keyID string) (crypto.Signer, error) {
	return nil, fmt.Errorf("%w: PKCS#11 support not compiled", ErrPrerequisiteMissing)
}

func (p *PKCS11KeyStore) ExportPEM(keyID string) ([]byte, error) {
	return nil, fmt.Errorf("%w: PKCS#11 support not compiled", ErrPrerequisiteMissing)
}

func (p *PKCS11KeyStore) ImportPEM(pemData []byte) (string, error) {
	return "", fmt.Errorf("%w: PKCS#11 support not compiled", ErrPrerequisiteMissing)
}

func (p *PKCS11KeyStore) Delete(keyID string) error {
	return fmt.Errorf("%w: PKCS#11 support not compiled", ErrPrerequisiteMissing)
}
