package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmcleod/certsmith/ca"
	"github.com/jmcleod/certsmith/internal/fileutil"
	"github.com/jmcleod/certsmith/internal/util"
)

var (
	caName        string
	caOutDir      string
	caYears       int
	caPfxPassword string
)

var createCACmd = &cobra.Command{
	Use:   "create-ca",
	Short: "Create a self-signed root certificate authority",
	Long: `Generates a 4096-bit RSA key pair and a self-signed root CA certificate.
The private key and certificate are written to the output directory; a
PKCS#12 bundle is produced only when --pfx-password is supplied (an empty
value exports an unprotected bundle).`,
	RunE: runCreateCA,
}

func runCreateCA(cmd *cobra.Command, args []string) error {
	derived := ca.DeriveFileName(caName)
	if derived == "" {
		return fmt.Errorf("%w: name %q contains no usable characters", ca.ErrInvalidParameter, caName)
	}
	if err := ensureOutDir(caOutDir); err != nil {
		return err
	}

	engine := ca.New()
	root, err := engine.CreateRootCA(ca.RootCARequest{
		Name:          caName,
		ValidityYears: caYears,
	})
	if err != nil {
		return err
	}

	files := fileutil.NewSet(caOutDir)
	keyPath, err := writeKeyFile(files, derived+".key", root.KeyPEM)
	if err != nil {
		files.Discard()
		return err
	}
	certPath, err := files.Write(derived+".crt", root.CertPEM, 0o644)
	if err != nil {
		files.Discard()
		return err
	}

	var pfxPath string
	if pfx := pfxOptionFromFlag(cmd, caPfxPassword); pfx.Requested() {
		data, err := engine.ExportPKCS12(root.Key, root.Certificate, pfx.Password())
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

	infoMsg(os.Stdout, "Created root CA %q (%d years)\n", caName, caYears)
	fmt.Printf("  key:  %s\n", keyPath)
	fmt.Printf("  cert: %s\n", certPath)
	if pfxPath != "" {
		fmt.Printf("  pfx:  %s\n", pfxPath)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(createCACmd)
	createCACmd.Flags().StringVar(&caName, "name", "", "Common name (and organization) of the CA")
	createCACmd.Flags().StringVar(&caOutDir, "out", ".", "Output directory")
	createCACmd.Flags().IntVar(&caYears, "years", 10, "Validity in years (1-50)")
	createCACmd.Flags().StringVar(&caPfxPassword, "pfx-password", "", "Export a PKCS#12 bundle protected by this password (empty value allowed)")
	createCACmd.MarkFlagRequired("name")
}
