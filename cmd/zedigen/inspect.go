package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gyeh/zedigen/internal/exitcode"
	"github.com/gyeh/zedigen/internal/parquetread"
	"github.com/gyeh/zedigen/internal/refdata"
)

var inspectDataDir string

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Summarize a Parquet file written by generate",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectDataDir, "data-dir", "", "reference data directory for code descriptions")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	log := setupLogger()
	path := args[0]

	stat, err := os.Stat(path)
	if err != nil {
		log.Error().Err(err).Msg("failed to stat file")
		os.Exit(exitcode.IOError)
	}

	reader, err := parquetread.Open(path)
	if err != nil {
		log.Error().Err(err).Msg("failed to open parquet file")
		os.Exit(exitcode.ValidationError)
	}
	defer reader.Close()

	if err := parquetread.ValidateSchema(reader.Schema()); err != nil {
		log.Error().Err(err).Msg("schema validation failed")
		os.Exit(exitcode.ValidationError)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		log.Error().Err(err).Msg("failed to read rows")
		os.Exit(exitcode.ValidationError)
	}
	sum := parquetread.Summarize(rows)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== zedigen inspect ===")
	fmt.Fprintf(out, "File:             %s\n", path)
	fmt.Fprintf(out, "Size:             %d bytes\n", stat.Size())
	fmt.Fprintf(out, "Line rows:        %d\n", sum.Rows)
	fmt.Fprintf(out, "Claims:           %d\n", sum.Claims)
	fmt.Fprintf(out, "Anomalous claims: %d\n", sum.AnomalousClaims)

	types := make([]string, 0, len(sum.AnomalyTypes))
	for t := range sum.AnomalyTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	if len(types) > 0 {
		fmt.Fprintln(out, "\nClaims per anomaly type:")
		for _, t := range types {
			fmt.Fprintf(out, "  %-28s %d\n", t, sum.AnomalyTypes[t])
		}
	}
	if len(sum.PlacesOfService) > 0 {
		ref := refdata.Load(os.DirFS(refdata.DataDir(inspectDataDir)), log)
		codes := make([]string, 0, len(sum.PlacesOfService))
		for c := range sum.PlacesOfService {
			codes = append(codes, c)
		}
		sort.Strings(codes)
		fmt.Fprintln(out, "\nLines per place of service:")
		for _, c := range codes {
			name, ok := ref.PlaceOfServiceName(c)
			if !ok {
				name = "unknown"
			}
			fmt.Fprintf(out, "  %-3s %-28s %d\n", c, name, sum.PlacesOfService[c])
		}
	}
	fmt.Fprintln(out, "Schema validation: OK")
	return nil
}
