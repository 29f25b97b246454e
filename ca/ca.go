// Package ca implements the certificate-issuance engine: self-signed root
// CA creation, CSR-based leaf issuance with subject-alternative-name
// support, and PKCS#12 export. Serial numbers are tracked per CA through a
// store.Ledger so repeated issuance never collides, and all signing is done
// natively via crypto/x509.
package ca

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmcleod/certsmith/store"
	"github.com/jmcleod/certsmith/store/memory"
)

// Key sizes and validity bounds.
const (
	RootKeyBits = 4096
	LeafKeyBits = 2048

	MaxRootValidityYears = 50
	MaxLeafValidityYears = 30
)

// rootSerial is the serial of the self-signed CA certificate itself; leaf
// serials start at store.FirstSerial.
var rootSerial = big.NewInt(1)

// yearsToValidity converts whole years to the certificate validity window
// length. Windows are measured in 365-day years, not calendar years.
func yearsToValidity(years int) time.Duration {
	return time.Duration(years) * 365 * 24 * time.Hour
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

// Engine owns key generation, self-signed root issuance, CSR-based leaf
// issuance, and PKCS#12 export. The zero configuration uses an in-memory
// software key store and an in-memory issuance ledger.
type Engine struct {
	ks     KeyStore
	ledger store.Ledger
	rand   io.Reader
	now    func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithKeyStore sets the key store used for generating and signing with
// private keys.
func WithKeyStore(ks KeyStore) Option {
	return func(e *Engine) { e.ks = ks }
}

// WithLedger sets the serial-number and issuance-record ledger. Use a
// file-backed ledger when issuances must not repeat serials across process
// restarts.
func WithLedger(l store.Ledger) Option {
	return func(e *Engine) { e.ledger = l }
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		rand: rand.Reader,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.ks == nil {
		e.ks = NewSoftwareKeyStore()
	}
	if e.ledger == nil {
		e.ledger = memory.NewLedger()
	}
	return e
}

// ---------------------------------------------------------------------------
// Root CA creation
// ---------------------------------------------------------------------------

// RootCARequest holds the parameters for creating a self-signed root CA.
type RootCARequest struct {
	// Name becomes both the CommonName and the Organization of the CA
	// subject.
	Name string

	// ValidityYears is the validity window in 365-day years, 1 to
	// MaxRootValidityYears.
	ValidityYears int
}

// RootCA is the material produced by CreateRootCA. Persistence is the
// caller's responsibility.
type RootCA struct {
	Key         crypto.Signer
	KeyPEM      []byte
	Certificate *x509.Certificate
	CertPEM     []byte
}

// CreateRootCA generates a fresh RSA-4096 key pair and a self-signed root
// certificate: issuer equals subject, SHA-256 digest, serial 1.
func (e *Engine) CreateRootCA(req RootCARequest) (*RootCA, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: CA name must not be empty", ErrInvalidParameter)
	}
	if req.ValidityYears < 1 || req.ValidityYears > MaxRootValidityYears {
		return nil, fmt.Errorf("%w: root validity must be 1-%d years, got %d", ErrInvalidParameter, MaxRootValidityYears, req.ValidityYears)
	}

	keyID, err := e.ks.GenerateKey(RootKeyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}
	defer e.ks.Delete(keyID)

	signer, err := e.ks.Signer(keyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	now := e.now().UTC()
	template := &x509.Certificate{
		SerialNumber: rootSerial,
		Subject: pkix.Name{
			CommonName:         req.Name,
			Organization:       []string{req.Name},
			OrganizationalUnit: []string{"IT"},
			Country:            []string{"AU"},
			Province:           []string{"Some-State"},
		},
		NotBefore:             now,
		NotAfter:              now.Add(yearsToValidity(req.ValidityYears)),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		SignatureAlgorithm:    x509.SHA256WithRSA,
	}

	der, err := x509.CreateCertificate(e.rand, template, template, signer.Public(), signer)
	if err != nil {
		return nil, fmt.Errorf("%w: self-signing root certificate: %v", ErrSigning, err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing root certificate: %v", ErrSigning, err)
	}

	keyPEM, err := e.ks.ExportPEM(keyID)
	if err != nil {
		return nil, fmt.Errorf("%w: exporting root key: %v", ErrKeyGeneration, err)
	}

	return &RootCA{
		Key:         signer,
		KeyPEM:      keyPEM,
		Certificate: cert,
		CertPEM:     EncodeCertificatePEM(der),
	}, nil
}

// ---------------------------------------------------------------------------
// Leaf issuance
// ---------------------------------------------------------------------------

// LeafRequest holds the parameters for issuing a leaf certificate.
type LeafRequest struct {
	CAKey  crypto.Signer
	CACert *x509.Certificate

	CommonName string

	// SubjectAltNames are DNS names and/or IPv4 literals. When empty, the
	// CommonName is injected as the sole DNS entry.
	SubjectAltNames []string

	// ValidityYears is the validity window in 365-day years, 1 to
	// MaxLeafValidityYears.
	ValidityYears int
}

// Leaf is the material produced by IssueLeaf. The CSR is returned alongside
// the signed certificate for audit and record keeping.
type Leaf struct {
	Key         crypto.Signer
	KeyPEM      []byte
	CSR         *x509.CertificateRequest
	CSRPEM      []byte
	Certificate *x509.Certificate
	CertPEM     []byte
}

// IssueLeaf generates a fresh RSA-2048 key pair, builds and validates a
// certificate signing request for it, and signs the request with the CA
// key. The issued certificate carries the CA's subject as issuer, the next
// unused serial for that CA from the ledger, serverAuth+clientAuth extended
// key usage, and the normalized SAN set.
func (e *Engine) IssueLeaf(req LeafRequest) (*Leaf, error) {
	if req.CAKey == nil || req.CACert == nil {
		return nil, fmt.Errorf("%w: CA key and certificate are required", ErrInvalidParameter)
	}
	if strings.TrimSpace(req.CommonName) == "" {
		return nil, fmt.Errorf("%w: common name must not be empty", ErrInvalidParameter)
	}
	if req.ValidityYears < 1 || req.ValidityYears > MaxLeafValidityYears {
		return nil, fmt.Errorf("%w: leaf validity must be 1-%d years, got %d", ErrInvalidParameter, MaxLeafValidityYears, req.ValidityYears)
	}
	if !keyMatchesCertificate(req.CAKey, req.CACert) {
		return nil, fmt.Errorf("%w: CA key does not correspond to CA certificate %q", ErrSigning, req.CACert.Subject.CommonName)
	}

	dnsNames, ips, err := NormalizeSANs(req.CommonName, req.SubjectAltNames)
	if err != nil {
		return nil, err
	}

	keyID, err := e.ks.GenerateKey(LeafKeyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}
	defer e.ks.Delete(keyID)

	leafSigner, err := e.ks.Signer(keyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	csrTemplate := &x509.CertificateRequest{
		Subject:            pkix.Name{CommonName: req.CommonName},
		DNSNames:           dnsNames,
		IPAddresses:        ips,
		SignatureAlgorithm: x509.SHA256WithRSA,
	}
	csrDER, err := x509.CreateCertificateRequest(e.rand, csrTemplate, leafSigner)
	if err != nil {
		return nil, fmt.Errorf("%w: creating certificate request: %v", ErrSigning, err)
	}
	csr, err := x509.ParseCertificateRequest(csrDER)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if err := csr.CheckSignature(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	caID := Fingerprint(req.CACert)
	serial, err := e.ledger.NextSerial(caID)
	if err != nil {
		return nil, fmt.Errorf("%w: allocating serial number: %v", ErrSigning, err)
	}

	now := e.now().UTC()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               csr.Subject,
		NotBefore:             now,
		NotAfter:              now.Add(yearsToValidity(req.ValidityYears)),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment | x509.KeyUsageDataEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		DNSNames:              csr.DNSNames,
		IPAddresses:           csr.IPAddresses,
		SignatureAlgorithm:    x509.SHA256WithRSA,
	}

	der, err := x509.CreateCertificate(e.rand, template, req.CACert, csr.PublicKey, req.CAKey)
	if err != nil {
		return nil, fmt.Errorf("%w: signing leaf certificate: %v", ErrSigning, err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing leaf certificate: %v", ErrSigning, err)
	}

	keyPEM, err := e.ks.ExportPEM(keyID)
	if err != nil {
		return nil, fmt.Errorf("%w: exporting leaf key: %v", ErrKeyGeneration, err)
	}

	ipStrings := make([]string, 0, len(cert.IPAddresses))
	for _, ip := range cert.IPAddresses {
		ipStrings = append(ipStrings, ip.String())
	}
	rec := store.IssuanceRecord{
		ID:          uuid.NewString(),
		CAID:        caID,
		Serial:      serial.Text(16),
		CommonName:  req.CommonName,
		DNSNames:    cert.DNSNames,
		IPAddresses: ipStrings,
		NotBefore:   cert.NotBefore,
		NotAfter:    cert.NotAfter,
		IssuedAt:    now,
	}
	if err := e.ledger.Record(rec); err != nil {
		return nil, fmt.Errorf("%w: recording issuance: %v", ErrSigning, err)
	}

	return &Leaf{
		Key:         leafSigner,
		KeyPEM:      keyPEM,
		CSR:         csr,
		CSRPEM:      EncodeCSRPEM(csrDER),
		Certificate: cert,
		CertPEM:     EncodeCertificatePEM(der),
	}, nil
}

// Issuances returns the audit records of certificates issued by the given
// CA through this engine's ledger, oldest first.
func (e *Engine) Issuances(caCert *x509.Certificate) ([]store.IssuanceRecord, error) {
	if caCert == nil {
		return nil, fmt.Errorf("%w: CA certificate is required", ErrInvalidParameter)
	}
	return e.ledger.List(Fingerprint(caCert))
}

// keyMatchesCertificate reports whether the signer's public key equals the
// certificate's embedded public key.
func keyMatchesCertificate(key crypto.Signer, cert *x509.Certificate) bool {
	pub, ok := cert.PublicKey.(interface{ Equal(crypto.PublicKey) bool })
	return ok && pub.Equal(key.Public())
}
