package ca

import (
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
)

// EncodeCertificatePEM wraps DER certificate bytes in a PEM block.
func EncodeCertificatePEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

// EncodeCSRPEM wraps DER certificate-request bytes in a PEM block.
func EncodeCSRPEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: der})
}

// ParseCertificatePEM decodes a PEM certificate.
func ParseCertificatePEM(data []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("%w: no CERTIFICATE PEM block found", ErrInvalidParameter)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return cert, nil
}

// ParsePrivateKeyPEM decodes a PEM RSA private key in PKCS#8 or PKCS#1 form.
func ParsePrivateKeyPEM(data []byte) (crypto.Signer, error) {
	return parseRSAPrivateKeyPEM(data)
}

// Fingerprint returns the hex SHA-256 digest of the certificate's DER
// encoding. It identifies a CA in the issuance ledger.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return hex.EncodeToString(sum[:])
}
