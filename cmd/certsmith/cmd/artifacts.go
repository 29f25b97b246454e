package cmd

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/jmcleod/certsmith/ca"
	"github.com/jmcleod/certsmith/internal/fileutil"
)

// pfxOptionFromFlag builds the tri-state PKCS#12 choice from the
// --pfx-password flag: absent means no bundle, present (even empty) means
// export with that password.
func pfxOptionFromFlag(cmd *cobra.Command, value string) ca.PFXOption {
	if !cmd.Flags().Changed("pfx-password") {
		return ca.PFXNotRequested()
	}
	return ca.PFXWithPassword(value)
}

// writeKeyFile writes a private-key PEM with owner-only permissions. The
// PEM bytes are moved into a locked buffer for the duration of the write
// and wiped afterwards.
func writeKeyFile(files *fileutil.Set, name string, keyPEM []byte) (string, error) {
	buf := memguard.NewBufferFromBytes(keyPEM)
	defer buf.Destroy()
	return files.Write(name, buf.Bytes(), 0o600)
}

// ensureOutDir creates the output directory if needed.
func ensureOutDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}
