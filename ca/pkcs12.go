package ca

import (
	"crypto"
	"crypto/x509"
	"fmt"

	pkcs12 "software.sslmate.com/src/go-pkcs12"

	"github.com/jmcleod/certsmith/internal/util"
)

// ExportPKCS12 packages a private key and its certificate into a PKCS#12
// bundle, optionally including chain certificates (the issuing CA for leaf
// exports). The password is NFKD-normalized before encoding; an empty
// password produces a bundle decodable without supplying one.
func (e *Engine) ExportPKCS12(key crypto.Signer, cert *x509.Certificate, password string, chain ...*x509.Certificate) ([]byte, error) {
	if key == nil || cert == nil {
		return nil, fmt.Errorf("%w: key and certificate are required", ErrExport)
	}
	if !keyMatchesCertificate(key, cert) {
		return nil, fmt.Errorf("%w: private key does not match certificate %q", ErrExport, cert.Subject.CommonName)
	}
	data, err := pkcs12.Modern.Encode(key, cert, chain, util.Normalize(password))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExport, err)
	}
	return data, nil
}
