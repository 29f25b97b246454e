package api_test

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkcs12 "software.sslmate.com/src/go-pkcs12"

	"github.com/jmcleod/certsmith/api"
	"github.com/jmcleod/certsmith/ca"
)

var (
	rootOnce   sync.Once
	cachedRoot *ca.RootCA
	rootErr    error
)

func testRootCA(t *testing.T) *ca.RootCA {
	t.Helper()
	rootOnce.Do(func() {
		cachedRoot, rootErr = ca.New().CreateRootCA(ca.RootCARequest{
			Name:          "API Test Root",
			ValidityYears: 5,
		})
	})
	require.NoError(t, rootErr)
	return cachedRoot
}

// newTestServer starts an httptest server with a fresh engine over the
// shared test root.
func newTestServer(t *testing.T) (*httptest.Server, *ca.RootCA) {
	t.Helper()
	root := testRootCA(t)
	engine := ca.New()
	a := api.New(engine, root.Key, root.Certificate)
	srv := httptest.NewServer(a.Router())
	t.Cleanup(srv.Close)
	return srv, root
}

func postIssue(t *testing.T, srv *httptest.Server, req api.IssueCertificateRequest) *http.Response {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/certificates", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestIssueCertificate(t *testing.T) {
	srv, root := newTestServer(t)

	resp := postIssue(t, srv, api.IssueCertificateRequest{
		CommonName:      "svc.test",
		SubjectAltNames: []string{"svc.test", "10.0.0.5"},
		ValidityYears:   1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out api.IssueCertificateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	cert, err := ca.ParseCertificatePEM([]byte(out.CertificatePEM))
	require.NoError(t, err)
	require.NoError(t, cert.CheckSignatureFrom(root.Certificate))
	assert.Equal(t, []string{"svc.test"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 1)
	assert.True(t, cert.IPAddresses[0].Equal(net.ParseIP("10.0.0.5")))

	assert.NotEmpty(t, out.Serial)
	assert.Contains(t, out.PrivateKeyPEM, "BEGIN PRIVATE KEY")
	assert.Contains(t, out.CSRPEM, "BEGIN CERTIFICATE REQUEST")
	assert.Contains(t, out.ChainPEM, "BEGIN CERTIFICATE")
	assert.Empty(t, out.PFX)
}

func TestIssueCertificate_WithEmptyPFXPassword(t *testing.T) {
	srv, root := newTestServer(t)

	empty := ""
	resp := postIssue(t, srv, api.IssueCertificateRequest{
		CommonName:    "bundle.test",
		ValidityYears: 1,
		PFXPassword:   &empty,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out api.IssueCertificateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.PFX)

	_, cert, chain, err := pkcs12.DecodeChain(out.PFX, "")
	require.NoError(t, err)
	assert.Equal(t, "bundle.test", cert.Subject.CommonName)
	require.Len(t, chain, 1)
	assert.Equal(t, root.Certificate.Subject.CommonName, chain[0].Subject.CommonName)
}

func TestIssueCertificate_InvalidParameters(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postIssue(t, srv, api.IssueCertificateRequest{
		CommonName:    "svc.test",
		ValidityYears: 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postIssue(t, srv, api.IssueCertificateRequest{
		CommonName:    "",
		ValidityYears: 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCACertificate(t *testing.T) {
	srv, root := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ca.pem")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	cert, err := ca.ParseCertificatePEM(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, root.Certificate.Subject.CommonName, cert.Subject.CommonName)
}

func TestListIssuances(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postIssue(t, srv, api.IssueCertificateRequest{
		CommonName:    "listed.test",
		ValidityYears: 1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	listResp, err := http.Get(srv.URL + "/certificates")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var out api.ListIssuancesResponse
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&out))
	require.Len(t, out.Certificates, 1)
	assert.Equal(t, "listed.test", out.Certificates[0].CommonName)
	assert.NotEmpty(t, out.Certificates[0].Serial)
	assert.NotEmpty(t, out.Certificates[0].ID)
}
