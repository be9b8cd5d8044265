// Command hedera-multisig creates threshold-key accounts on Hedera and
// collects the signatures needed to move funds out of them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
