// Package api exposes the certificate-issuance engine over HTTP: issue leaf
// certificates, list issuance records, and fetch the CA certificate.
package api

import (
	"crypto"
	"crypto/x509"
	_ "embed"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/jmcleod/certsmith/ca"
)

// API holds the dependencies needed by the REST handlers.
type API struct {
	engine *ca.Engine
	caKey  crypto.Signer
	caCert *x509.Certificate
	audit  *slog.Logger
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for issuance audit events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = logger
	}
}

// New creates a new API instance serving issuance from the given CA.
func New(engine *ca.Engine, caKey crypto.Signer, caCert *x509.Certificate, opts ...Option) *API {
	a := &API{
		engine: engine,
		caKey:  caKey,
		caCert: caCert,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.audit == nil {
		a.audit = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return a
}

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/redoc",
	}, nil))

	r.Get("/ca.pem", a.CACertificate)
	r.Post("/certificates", a.IssueCertificate)
	r.Get("/certificates", a.ListIssuances)

	return r
}
