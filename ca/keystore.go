package ca

import (
	"crypto"
	"fmt"
)

// KeyStore abstracts private-key operations so that the issuance engine can
// work with software keys held in memory, HSM-backed keys, or cloud KMS keys
// without changing calling code.
//
// Each KeyStore implementation is responsible for generating, holding, and
// signing with private keys. A KeyID uniquely identifies a key managed by
// the store; its format is implementation-defined.
type KeyStore interface {
	// GenerateKey creates a new RSA signing key of the given bit size and
	// returns an opaque identifier. For HSM/KMS backends the private key
	// never leaves the hardware.
	GenerateKey(bits int) (keyID string, err error)

	// Signer returns a [crypto.Signer] for the key identified by keyID.
	// The returned Signer is what x509.CreateCertificate and
	// x509.CreateCertificateRequest sign with.
	Signer(keyID string) (crypto.Signer, error)

	// ExportPEM returns the private key as PKCS#8 PEM. HSM/KMS
	// implementations may return ErrKeyNotExportable.
	ExportPEM(keyID string) ([]byte, error)

	// ImportPEM loads a PEM-encoded private key into the store and returns
	// its key ID. Both PKCS#8 and PKCS#1 encodings are accepted.
	ImportPEM(pemData []byte) (keyID string, err error)

	// Delete removes the key identified by keyID from the store. The engine
	// deletes transient keys once issuance completes or fails, so no key
	// material outlives its issuance inside the store.
	Delete(keyID string) error
}

// ErrKeyNotExportable is returned by KeyStore.ExportPEM when the backing
// store does not allow private key material to leave the device.
var ErrKeyNotExportable = fmt.Errorf("private key is not exportable")

// ErrKeyNotFound is returned when the referenced key ID does not exist.
var ErrKeyNotFound = fmt.Errorf("key not found")
