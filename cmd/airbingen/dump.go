package main

import (
	"debug/elf"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <airbin-file>",
		Short: "List an AIRBIN's sections by name and base address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := elf.Open(args[0])
			if err != nil {
				return fmt.Errorf("airbingen: opening %s: %w", args[0], err)
			}
			defer f.Close()

			for _, sec := range f.Sections {
				if sec.Type != elf.SHT_PROGBITS {
					continue
				}
				fmt.Fprintf(os.Stdout, "%-12s addr=0x%08x size=%d\n", sec.Name, sec.Addr, sec.Size)
			}
			return nil
		},
	}
	return cmd
}
