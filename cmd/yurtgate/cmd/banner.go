package cmd

import (
	"fmt"
)

const banner = `
                    _               _
  _   _ _   _ _ __| |_ __ _  __ _ | |_ ___
 | | | | | | | '__| __/ _` + "`" + ` |/ _` + "`" + ` || __/ _ \
 | |_| | |_| | |  | || (_| | (_| || ||  __/
  \__, |\__,_|_|   \__\__, |\__,_| \__\___|
  |___/               |___/
`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Yurt Market Access Gateway - Version %s\x1b[0m\n\n", Version)
}
