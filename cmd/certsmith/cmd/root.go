package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is the release version stamped into the banner.
const Version = "0.1.0"

var errMsg = color.New(color.FgRed).FprintfFunc()
var infoMsg = color.New(color.FgGreen).FprintfFunc()

var rootCmd = &cobra.Command{
	Use:   "certsmith",
	Short: "Certsmith is a local certificate authority toolkit",
	Long: `Create self-signed root certificate authorities and issue SSL/TLS leaf
certificates with subject-alternative-name support, natively and offline.
Complete documentation is available at https://github.com/jmcleod/certsmith`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errMsg(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
