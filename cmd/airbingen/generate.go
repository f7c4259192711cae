package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/aie-tools/airbingen/internal/genconfig"
	"github.com/aie-tools/airbingen/internal/ir"
	"github.com/aie-tools/airbingen/internal/translate"
)

type stderrLogger struct {
	verbose bool
}

func (l stderrLogger) Diagnosef(format string, args ...any) {
	if !l.verbose {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func newGenerateCommand() *cobra.Command {
	var configPath string
	var devicePath string
	var outPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Translate a YAML device description into an AIRBIN artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := genconfig.LoadFrom(configPath)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = env.Str("AIRBIN_OUT", cfg.Generate.OutputPath)
			}
			if !verbose {
				verbose = env.Bool("AIRBIN_VERBOSE")
			}

			dev, err := ir.LoadYAMLDeviceFile(devicePath)
			if err != nil {
				return fmt.Errorf("airbingen: loading device description: %w", err)
			}

			tr := translate.New(stderrLogger{verbose: verbose || cfg.Logging.Verbose}, cfg.Generate.ArrayOffset)
			if _, err := tr.Run(dev); err != nil {
				return fmt.Errorf("airbingen: translating device: %w", err)
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("airbingen: creating output %s: %w", outPath, err)
			}
			defer f.Close()

			if err := tr.Emit(f); err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&devicePath, "device", "", "path to the YAML device description")
	cmd.Flags().StringVar(&outPath, "out", "", "output AIRBIN path (default from config or AIRBIN_OUT)")
	cmd.Flags().StringVar(&configPath, "config", "airbingen.toml", "generator config file")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable diagnostic logging")
	cmd.MarkFlagRequired("device")

	return cmd
}
