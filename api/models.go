package api

import (
	"time"

	"github.com/jmcleod/certsmith/store"
)

// IssueCertificateRequest is the JSON body for POST /certificates.
// PFXPassword is deliberately a pointer: absent means no bundle, present
// with an empty string means an unprotected bundle.
type IssueCertificateRequest struct {
	CommonName      string   `json:"common_name"`
	SubjectAltNames []string `json:"subject_alt_names,omitempty"`
	ValidityYears   int      `json:"validity_years"`
	PFXPassword     *string  `json:"pfx_password,omitempty"`
}

// IssueCertificateResponse carries the issued material. PFX is base64 in
// JSON and only present when a bundle was requested.
type IssueCertificateResponse struct {
	CertificatePEM string    `json:"certificate_pem"`
	PrivateKeyPEM  string    `json:"private_key_pem"`
	CSRPEM         string    `json:"csr_pem"`
	ChainPEM       string    `json:"chain_pem"`
	Serial         string    `json:"serial"`
	NotBefore      time.Time `json:"not_before"`
	NotAfter       time.Time `json:"not_after"`
	PFX            []byte    `json:"pfx,omitempty"`
}

// ListIssuancesResponse is the body for GET /certificates.
type ListIssuancesResponse struct {
	Certificates []store.IssuanceRecord `json:"certificates"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
