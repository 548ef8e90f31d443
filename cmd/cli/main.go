package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bilgisen/veritas/cmd/cli/cmd"
	"github.com/bilgisen/veritas/internal/apiclient"
)

func main() {
	rootCmd := cmd.NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, apiclient.ErrNeedsAuth) {
			fmt.Fprintln(os.Stderr, "Login required: run `veritas login` first")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}
