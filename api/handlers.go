package api

import (
	"encoding/json"
	"net/http"

	"github.com/jmcleod/certsmith/ca"
)

// CACertificate serves the CA certificate as PEM.
func (a *API) CACertificate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-pem-file")
	w.Write(ca.EncodeCertificatePEM(a.caCert.Raw))
}

// IssueCertificate issues a leaf certificate signed by the configured CA.
func (a *API) IssueCertificate(w http.ResponseWriter, r *http.Request) {
	var req IssueCertificateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	leaf, err := a.engine.IssueLeaf(ca.LeafRequest{
		CAKey:           a.caKey,
		CACert:          a.caCert,
		CommonName:      req.CommonName,
		SubjectAltNames: req.SubjectAltNames,
		ValidityYears:   req.ValidityYears,
	})
	if err != nil {
		mapError(w, err)
		return
	}

	resp := IssueCertificateResponse{
		CertificatePEM: string(leaf.CertPEM),
		PrivateKeyPEM:  string(leaf.KeyPEM),
		CSRPEM:         string(leaf.CSRPEM),
		ChainPEM:       string(ca.EncodeCertificatePEM(a.caCert.Raw)),
		Serial:         leaf.Certificate.SerialNumber.Text(16),
		NotBefore:      leaf.Certificate.NotBefore,
		NotAfter:       leaf.Certificate.NotAfter,
	}
	if req.PFXPassword != nil {
		pfx, err := a.engine.ExportPKCS12(leaf.Key, leaf.Certificate, *req.PFXPassword, a.caCert)
		if err != nil {
			mapError(w, err)
			return
		}
		resp.PFX = pfx
	}

	a.audit.Info("certificate issued",
		"common_name", req.CommonName,
		"serial", resp.Serial,
		"not_after", resp.NotAfter,
		"san_count", len(leaf.Certificate.DNSNames)+len(leaf.Certificate.IPAddresses),
		"pfx", req.PFXPassword != nil,
	)

	writeJSON(w, http.StatusCreated, resp)
}

// ListIssuances returns the audit records of certificates issued by the CA.
func (a *API) ListIssuances(w http.ResponseWriter, r *http.Request) {
	recs, err := a.engine.Issuances(a.caCert)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListIssuancesResponse{Certificates: recs})
}
