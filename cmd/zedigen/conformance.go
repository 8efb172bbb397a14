package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/zedigen/internal/conformance"
	"github.com/gyeh/zedigen/internal/exitcode"
)

var strictConformance bool

var conformanceCmd = &cobra.Command{
	Use:   "conformance FILE",
	Short: "Report which required 835 segments an X12 file contains",
	Args:  cobra.ExactArgs(1),
	RunE:  runConformance,
}

func init() {
	conformanceCmd.Flags().BoolVar(&strictConformance, "strict", false, "Exit non-zero when a required segment is missing")
	rootCmd.AddCommand(conformanceCmd)
}

func runConformance(cmd *cobra.Command, args []string) error {
	log := setupLogger()

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Error().Err(err).Str("file", args[0]).Msg("failed to read file")
		os.Exit(exitcode.IOError)
	}

	res := conformance.Check(string(data))
	if err := res.Report(cmd.OutOrStdout()); err != nil {
		log.Error().Err(err).Msg("failed to write report")
		os.Exit(exitcode.IOError)
	}
	if strictConformance && res.Found < res.Total {
		os.Exit(exitcode.ValidationError)
	}
	return nil
}
