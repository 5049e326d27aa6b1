// Command iquecore boots the emulated console core from six raw image
// files and runs it to a clean halt or a fatal host error.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
