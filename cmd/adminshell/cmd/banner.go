package cmd

import (
	"fmt"
	"io"
)

const banner = `
            _           _           _          _ _ 
   __ _  __| |_ __ ___ (_)_ __  ___| |__   ___| | |
  / _` + "`" + ` |/ _` + "`" + ` | '_ ` + "`" + ` _ \| | '_ \/ __| '_ \ / _ \ | |
 | (_| | (_| | | | | | | | | | \__ \ | | |  __/ | |
  \__,_|\__,_|_| |_| |_|_|_| |_|___/_| |_|\___|_|_|
`

func printBanner(w io.Writer) {
	fmt.Fprintf(w, "\x1b[34m%s\x1b[0m", banner)
	fmt.Fprintf(w, "\x1b[32m  Admin Dashboard - Version %s\x1b[0m\n\n", Version)
}
