package cmd

import (
	"crypto"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmcleod/certsmith/ca"
	"github.com/jmcleod/certsmith/internal/fileutil"
	"github.com/jmcleod/certsmith/internal/util"
	bboltstore "github.com/jmcleod/certsmith/store/bbolt"
)

var (
	issueCAKeyPath  string
	issueCACertPath string
	issueCN         string
	issueSANs       []string
	issueOutDir     string
	issueYears      int
	issuePfxPass    string
)

var issueCertCmd = &cobra.Command{
	Use:   "issue-cert",
	Short: "Issue a leaf SSL/TLS certificate signed by a root CA",
	Long: `Generates a 2048-bit RSA key pair and a certificate signing request for
the given common name, then signs it with the CA. Subject alternative names
are classified automatically: four dot-separated decimal octets are IP
entries, everything else is DNS. With no --san, the common name itself
becomes the sole DNS entry.

Serial numbers are tracked in a ledger file next to the CA certificate, so
sequential issuances from the same CA never repeat a serial.`,
	RunE: runIssueCert,
}

func runIssueCert(cmd *cobra.Command, args []string) error {
	derived := ca.DeriveFileName(issueCN)
	if derived == "" {
		return fmt.Errorf("%w: common name %q contains no usable characters", ca.ErrInvalidParameter, issueCN)
	}
	if err := ensureOutDir(issueOutDir); err != nil {
		return err
	}

	caKey, caCert, err := loadCAMaterial(issueCAKeyPath, issueCACertPath)
	if err != nil {
		return err
	}

	ledger, err := bboltstore.NewLedgerFromFile(ledgerPathForCA(issueCACertPath), nil)
	if err != nil {
		return fmt.Errorf("opening serial ledger: %w", err)
	}
	defer ledger.Close()

	engine := ca.New(ca.WithLedger(ledger))
	leaf, err := engine.IssueLeaf(ca.LeafRequest{
		CAKey:           caKey,
		CACert:          caCert,
		CommonName:      issueCN,
		SubjectAltNames: issueSANs,
		ValidityYears:   issueYears,
	})
	if err != nil {
		return err
	}

	files := fileutil.NewSet(issueOutDir)
	keyPath, err := writeKeyFile(files, derived+".key", leaf.KeyPEM)
	if err != nil {
		files.Discard()
		return err
	}
	csrPath, err := files.Write(derived+".csr", leaf.CSRPEM, 0o644)
	if err != nil {
		files.Discard()
		return err
	}
	certPath, err := files.Write(derived+".crt", leaf.CertPEM, 0o644)
	if err != nil {
		files.Discard()
		return err
	}

	var pfxPath string
	if pfx := pfxOptionFromFlag(cmd, issuePfxPass); pfx.Requested() {
		data, err := engine.ExportPKCS12(leaf.Key, leaf.Certificate, pfx.Password(), caCert)
		if err != nil {
			files.Discard()
			return err
		}
		pfxPath, err = files.Write(derived+".pfx", data, 0o600)
		util.WipeBytes(data)
		if err != nil {
			files.Discard()
			return err
		}
	}

	infoMsg(os.Stdout, "Issued certificate for %q (serial %s, %d years)\n",
		issueCN, leaf.Certificate.SerialNumber.Text(16), issueYears)
	fmt.Printf("  key:  %s\n", keyPath)
	fmt.Printf("  csr:  %s\n", csrPath)
	fmt.Printf("  cert: %s\n", certPath)
	if pfxPath != "" {
		fmt.Printf("  pfx:  %s\n", pfxPath)
	}

	return nil
}

// loadCAMaterial reads and parses the CA private key and certificate files.
func loadCAMaterial(keyPath, certPath string) (crypto.Signer, *x509.Certificate, error) {
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading CA key: %v", ca.ErrInvalidParameter, err)
	}
	caKey, err := ca.ParsePrivateKeyPEM(keyPEM)
	if err != nil {
		return nil, nil, fmt.Errorf("CA key %s: %w", keyPath, err)
	}
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading CA certificate: %v", ca.ErrInvalidParameter, err)
	}
	caCert, err := ca.ParseCertificatePEM(certPEM)
	if err != nil {
		return nil, nil, fmt.Errorf("CA certificate %s: %w", certPath, err)
	}
	return caKey, caCert, nil
}

// ledgerPathForCA places the serial ledger next to the CA certificate,
// sharing its base name.
func ledgerPathForCA(caCertPath string) string {
	base := strings.TrimSuffix(caCertPath, filepath.Ext(caCertPath))
	return base + ".serials.db"
}

func init() {
	rootCmd.AddCommand(issueCertCmd)
	issueCertCmd.Flags().StringVar(&issueCAKeyPath, "ca-key", "", "Path to the CA private key")
	issueCertCmd.Flags().StringVar(&issueCACertPath, "ca-cert", "", "Path to the CA certificate")
	issueCertCmd.Flags().StringVar(&issueCN, "cn", "", "Common name of the certificate")
	issueCertCmd.Flags().StringArrayVar(&issueSANs, "san", nil, "Subject alternative name (repeatable; DNS name or IPv4 address)")
	issueCertCmd.Flags().StringVar(&issueOutDir, "out", ".", "Output directory")
	issueCertCmd.Flags().IntVar(&issueYears, "years", 1, "Validity in years (1-30)")
	issueCertCmd.Flags().StringVar(&issuePfxPass, "pfx-password", "", "Export a PKCS#12 bundle protected by this password (empty value allowed)")
	issueCertCmd.MarkFlagRequired("ca-key")
	issueCertCmd.MarkFlagRequired("ca-cert")
	issueCertCmd.MarkFlagRequired("cn")
}
