// Command csvtree converts branch-metrics exports to hierarchical JSON or YAML.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/branchtree/internal/config"
	"github.com/JonMunkholm/branchtree/internal/core"
	"github.com/JonMunkholm/branchtree/internal/logging"
	"github.com/JonMunkholm/branchtree/internal/tabular"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type convertOptions struct {
	outputPath string
	pretty     bool
	format     string
	strategy   string
	stats      bool
}

func main() {
	// A missing .env is fine; the CLI runs on defaults.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "csvtree",
		Short:        "Convert branch-metrics exports into a state/region/branch tree",
		SilenceUsage: true,
	}
	root.AddCommand(newConvertCmd(), newSchemaCmd())
	return root
}

func newConvertCmd() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert [input.csv|input.xlsx|-]",
		Short: "Convert an export file",
		Long: `Convert reads a CSV or XLSX export (or CSV on stdin when the path is "-")
and writes the state -> region -> branch hierarchy as JSON or YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&opts.format, "format", "json", "Output format: json, yaml")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Row strategy: indexed, streaming (default: CONVERT_STRATEGY)")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print conversion statistics to stderr")

	return cmd
}

func runConvert(cmd *cobra.Command, inputPath string, opts convertOptions) error {
	format := strings.ToLower(opts.format)
	if format != "json" && format != "yaml" {
		return fmt.Errorf("invalid format: %s (must be json or yaml)", opts.format)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// stdout carries the document, so logs go to stderr.
	logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	service, err := core.NewService(cfg)
	if err != nil {
		return err
	}

	var in io.Reader
	name := inputPath
	if inputPath == "-" {
		in = cmd.InOrStdin()
		name = "stdin"
	} else {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	result, err := service.Convert(cmd.Context(), core.ConvertRequest{
		FileName: filepath.Base(name),
		Format:   tabular.FormatFromName(name),
		Body:     in,
		Strategy: opts.strategy,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
	}

	data, err := encode(result.Document, format, opts.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if opts.outputPath != "" {
		if err := os.WriteFile(opts.outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}

	if opts.stats {
		s := result.Stats
		fmt.Fprintf(cmd.ErrOrStderr(),
			"rows=%d states=%d regions=%d branches=%d skipped=%d dropped=%d strategy=%s\n",
			s.Rows, s.States, s.Regions, s.Branches, s.Skipped, len(s.Dropped), result.Strategy)
	}
	return nil
}

// encode serialises doc; output always ends in a newline.
func encode(doc *core.Document, format string, pretty bool) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(doc)
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "List the columns read from an export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, col := range []string{core.ColState, core.ColRegion, core.ColBranchName} {
				fmt.Fprintf(out, "%-36s %-28s %s\n", col, "-", "hierarchy")
			}
			for _, mc := range core.MetricColumns {
				fmt.Fprintf(out, "%-36s %-28s %s\n", mc.Column, mc.Key, mc.Kind)
			}
			return nil
		},
	}
}
