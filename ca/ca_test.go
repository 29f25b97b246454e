package ca_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/certsmith/ca"
)

const testRootYears = 10

var (
	rootOnce   sync.Once
	cachedRoot *ca.RootCA
	rootErr    error
)

// testRootCA returns a shared root CA so the RSA-4096 generation cost is
// paid once per test run.
func testRootCA(t *testing.T) *ca.RootCA {
	t.Helper()
	rootOnce.Do(func() {
		cachedRoot, rootErr = ca.New().CreateRootCA(ca.RootCARequest{
			Name:          "Certsmith Test Root",
			ValidityYears: testRootYears,
		})
	})
	require.NoError(t, rootErr)
	return cachedRoot
}

func TestCreateRootCA(t *testing.T) {
	root := testRootCA(t)
	cert := root.Certificate

	// Self-signed: issuer equals subject.
	assert.Equal(t, cert.Subject.String(), cert.Issuer.String())
	assert.Equal(t, "Certsmith Test Root", cert.Subject.CommonName)
	assert.Equal(t, []string{"Certsmith Test Root"}, cert.Subject.Organization)
	assert.Equal(t, []string{"IT"}, cert.Subject.OrganizationalUnit)

	assert.True(t, cert.IsCA)
	assert.True(t, cert.BasicConstraintsValid)
	assert.Equal(t, int64(1), cert.SerialNumber.Int64())
	assert.Equal(t, x509.SHA256WithRSA, cert.SignatureAlgorithm)
	assert.NotZero(t, cert.KeyUsage&x509.KeyUsageCertSign)

	// Validity window measured in 365-day years.
	window := cert.NotAfter.Sub(cert.NotBefore)
	assert.InDelta(t, float64(testRootYears*365*24), window.Hours(), 24)

	// The returned key belongs to the certificate.
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	require.True(t, ok)
	assert.Equal(t, ca.RootKeyBits, pub.N.BitLen())
	assert.True(t, pub.Equal(root.Key.Public()))

	// The self-signature validates.
	require.NoError(t, cert.CheckSignatureFrom(cert))

	assert.Contains(t, string(root.KeyPEM), "BEGIN PRIVATE KEY")
	assert.Contains(t, string(root.CertPEM), "BEGIN CERTIFICATE")
}

func TestCreateRootCA_InvalidParameters(t *testing.T) {
	engine := ca.New()

	tests := []struct {
		name string
		req  ca.RootCARequest
	}{
		{"empty name", ca.RootCARequest{Name: "", ValidityYears: 5}},
		{"blank name", ca.RootCARequest{Name: "   ", ValidityYears: 5}},
		{"zero years", ca.RootCARequest{Name: "CA", ValidityYears: 0}},
		{"too many years", ca.RootCARequest{Name: "CA", ValidityYears: ca.MaxRootValidityYears + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.CreateRootCA(tt.req)
			assert.ErrorIs(t, err, ca.ErrInvalidParameter)
		})
	}
}

func TestIssueLeaf_DefaultSAN(t *testing.T) {
	root := testRootCA(t)
	engine := ca.New()

	leaf, err := engine.IssueLeaf(ca.LeafRequest{
		CAKey:         root.Key,
		CACert:        root.Certificate,
		CommonName:    "internal.service",
		ValidityYears: 1,
	})
	require.NoError(t, err)

	cert := leaf.Certificate
	// No SAN supplied: the common name is injected as the sole DNS entry.
	assert.Equal(t, []string{"internal.service"}, cert.DNSNames)
	assert.Empty(t, cert.IPAddresses)

	assert.Equal(t, root.Certificate.Subject.String(), cert.Issuer.String())
	assert.False(t, cert.IsCA)
	assert.Contains(t, cert.ExtKeyUsage, x509.ExtKeyUsageServerAuth)
	assert.Contains(t, cert.ExtKeyUsage, x509.ExtKeyUsageClientAuth)
	assert.NotZero(t, cert.KeyUsage&x509.KeyUsageDigitalSignature)
	assert.NotZero(t, cert.KeyUsage&x509.KeyUsageKeyEncipherment)
	assert.NotZero(t, cert.KeyUsage&x509.KeyUsageDataEncipherment)

	require.NoError(t, cert.CheckSignatureFrom(root.Certificate))

	// The CSR travels with the issued material for audit.
	require.NotNil(t, leaf.CSR)
	assert.Equal(t, "internal.service", leaf.CSR.Subject.CommonName)
	assert.NoError(t, leaf.CSR.CheckSignature())
	assert.Contains(t, string(leaf.CSRPEM), "BEGIN CERTIFICATE REQUEST")

	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	require.True(t, ok)
	assert.Equal(t, ca.LeafKeyBits, pub.N.BitLen())
	assert.True(t, pub.Equal(leaf.Key.Public()))
}

func TestIssueLeaf_SANClassificationAndOrder(t *testing.T) {
	root := testRootCA(t)
	engine := ca.New()

	leaf, err := engine.IssueLeaf(ca.LeafRequest{
		CAKey:           root.Key,
		CACert:          root.Certificate,
		CommonName:      "www.example.com",
		SubjectAltNames: []string{"www.example.com", "192.168.1.100", "mail.example.com", "10.0.0.5"},
		ValidityYears:   1,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"www.example.com", "mail.example.com"}, leaf.Certificate.DNSNames)
	require.Len(t, leaf.Certificate.IPAddresses, 2)
	assert.True(t, leaf.Certificate.IPAddresses[0].Equal(net.ParseIP("192.168.1.100")))
	assert.True(t, leaf.Certificate.IPAddresses[1].Equal(net.ParseIP("10.0.0.5")))
}

func TestIssueLeaf_SequentialSerialsDistinct(t *testing.T) {
	root := testRootCA(t)
	engine := ca.New()

	first, err := engine.IssueLeaf(ca.LeafRequest{
		CAKey: root.Key, CACert: root.Certificate,
		CommonName: "one.test", ValidityYears: 1,
	})
	require.NoError(t, err)
	second, err := engine.IssueLeaf(ca.LeafRequest{
		CAKey: root.Key, CACert: root.Certificate,
		CommonName: "two.test", ValidityYears: 1,
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.Certificate.SerialNumber, second.Certificate.SerialNumber)

	recs, err := engine.Issuances(root.Certificate)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "one.test", recs[0].CommonName)
	assert.Equal(t, "two.test", recs[1].CommonName)
	assert.NotEqual(t, recs[0].Serial, recs[1].Serial)
}

func TestIssueLeaf_CAKeyMismatch(t *testing.T) {
	root := testRootCA(t)
	engine := ca.New()

	wrongKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	_, err = engine.IssueLeaf(ca.LeafRequest{
		CAKey:         wrongKey,
		CACert:        root.Certificate,
		CommonName:    "svc.test",
		ValidityYears: 1,
	})
	assert.ErrorIs(t, err, ca.ErrSigning)
}

func TestIssueLeaf_InvalidParameters(t *testing.T) {
	root := testRootCA(t)
	engine := ca.New()

	tests := []struct {
		name string
		req  ca.LeafRequest
	}{
		{"missing CA", ca.LeafRequest{CommonName: "svc.test", ValidityYears: 1}},
		{"empty common name", ca.LeafRequest{CAKey: root.Key, CACert: root.Certificate, ValidityYears: 1}},
		{"zero years", ca.LeafRequest{CAKey: root.Key, CACert: root.Certificate, CommonName: "svc.test"}},
		{"too many years", ca.LeafRequest{CAKey: root.Key, CACert: root.Certificate, CommonName: "svc.test", ValidityYears: ca.MaxLeafValidityYears + 1}},
		{"out-of-range octet", ca.LeafRequest{CAKey: root.Key, CACert: root.Certificate, CommonName: "svc.test", SubjectAltNames: []string{"192.168.1.999"}, ValidityYears: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.IssueLeaf(tt.req)
			assert.ErrorIs(t, err, ca.ErrInvalidParameter)
		})
	}
}

func TestIssueLeaf_FixedClock(t *testing.T) {
	root := testRootCA(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := ca.New(ca.WithClock(func() time.Time { return now }))

	leaf, err := engine.IssueLeaf(ca.LeafRequest{
		CAKey: root.Key, CACert: root.Certificate,
		CommonName: "svc.test", ValidityYears: 2,
	})
	require.NoError(t, err)

	assert.True(t, leaf.Certificate.NotBefore.Equal(now))
	assert.True(t, leaf.Certificate.NotAfter.Equal(now.Add(2*365*24*time.Hour)))
}

func TestEndToEnd(t *testing.T) {
	engine := ca.New()

	root, err := engine.CreateRootCA(ca.RootCARequest{Name: "TestCA", ValidityYears: 1})
	require.NoError(t, err)
	assert.Equal(t, root.Certificate.Subject.String(), root.Certificate.Issuer.String())
	window := root.Certificate.NotAfter.Sub(root.Certificate.NotBefore)
	assert.InDelta(t, float64(365*24), window.Hours(), 24)

	leaf, err := engine.IssueLeaf(ca.LeafRequest{
		CAKey:           root.Key,
		CACert:          root.Certificate,
		CommonName:      "svc.test",
		SubjectAltNames: []string{"svc.test", "10.0.0.5"},
		ValidityYears:   1,
	})
	require.NoError(t, err)

	require.NoError(t, leaf.Certificate.CheckSignatureFrom(root.Certificate))
	assert.Equal(t, []string{"svc.test"}, leaf.Certificate.DNSNames)
	require.Len(t, leaf.Certificate.IPAddresses, 1)
	assert.True(t, leaf.Certificate.IPAddresses[0].Equal(net.ParseIP("10.0.0.5")))

	// The leaf chains to the root through the standard verifier as well.
	roots := x509.NewCertPool()
	roots.AddCert(root.Certificate)
	_, err = leaf.Certificate.Verify(x509.VerifyOptions{
		Roots:     roots,
		DNSName:   "svc.test",
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})
	assert.NoError(t, err)
}
