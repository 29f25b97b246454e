package cmd

import (
	"fmt"
)

const banner = `
                 _                  _ _   _
   ___ ___ _ __| |_ ___ _ __ ___ (_) |_| |__
  / __/ _ \ '__| __/ __| '_ ` + "`" + ` _ \| | __| '_ \
 | (_|  __/ |  | |_\__ \ | | | | | | |_| | | |
  \___\___|_|   \__|___/_| |_| |_|_|\__|_| |_|

`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Local Certificate Authority - Version %s\x1b[0m\n\n", Version)
}
