package cmd

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/jmcleod/certsmith/api"
	"github.com/jmcleod/certsmith/ca"
	bboltstore "github.com/jmcleod/certsmith/store/bbolt"
)

var (
	servePort       int
	serveCAKeyPath  string
	serveCACertPath string
	serveLedgerPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the issuing API for a root CA over HTTPS",
	Long: `Starts an HTTP service that issues leaf certificates signed by the given
CA. The service terminates TLS with a certificate it issues to itself from
that same CA, so trusting the CA certificate is enough to talk to it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		caKey, caCert, err := loadCAMaterial(serveCAKeyPath, serveCACertPath)
		if err != nil {
			return err
		}

		ledgerPath := serveLedgerPath
		if ledgerPath == "" {
			ledgerPath = ledgerPathForCA(serveCACertPath)
		}
		ledger, err := bboltstore.NewLedgerFromFile(ledgerPath, nil)
		if err != nil {
			return fmt.Errorf("opening serial ledger: %w", err)
		}
		defer ledger.Close()

		engine := ca.New(ca.WithLedger(ledger))
		a := api.New(engine, caKey, caCert)

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/api/v1", a.Router())

		// The service dogfoods its own CA: issue a short-lived localhost
		// certificate and serve TLS with it.
		serverLeaf, err := engine.IssueLeaf(ca.LeafRequest{
			CAKey:           caKey,
			CACert:          caCert,
			CommonName:      "localhost",
			SubjectAltNames: []string{"localhost", "127.0.0.1"},
			ValidityYears:   1,
		})
		if err != nil {
			return fmt.Errorf("issuing server certificate: %w", err)
		}
		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{{
				Certificate: [][]byte{serverLeaf.Certificate.Raw, caCert.Raw},
				PrivateKey:  serverLeaf.Key,
			}},
			MinVersion: tls.VersionTLS12,
		}

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", servePort),
			Handler:           r,
			TLSConfig:         tlsConfig,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		fmt.Printf("Issuing for %q on port %d (ledger: %s)...\n",
			caCert.Subject.CommonName, servePort, ledgerPath)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8443, "Port to listen on")
	serveCmd.Flags().StringVar(&serveCAKeyPath, "ca-key", "", "Path to the CA private key")
	serveCmd.Flags().StringVar(&serveCACertPath, "ca-cert", "", "Path to the CA certificate")
	serveCmd.Flags().StringVar(&serveLedgerPath, "ledger", "", "Serial ledger path (default: next to the CA certificate)")
	serveCmd.MarkFlagRequired("ca-key")
	serveCmd.MarkFlagRequired("ca-cert")
}
