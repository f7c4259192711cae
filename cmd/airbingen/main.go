// Command airbingen translates a device configuration description into
// an AIRBIN artifact, or dumps the sections of an already-built one.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "airbingen",
		Short: "AIRBIN generator for AI-engine device configurations",
	}

	root.AddCommand(newGenerateCommand())
	root.AddCommand(newDumpCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
