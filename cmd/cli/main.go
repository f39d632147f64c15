package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"asepower/adapters/rscript"
	"asepower/app"
	"asepower/domain/scenario"
	"asepower/internal"
	"asepower/internal/config"
	"asepower/internal/container"

	"github.com/spf13/cobra"
)

var deps *container.Container

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "asepower",
		Short:         "Power analysis pipeline for Bayesian allele-specific expression",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			deps, err = container.New(cfg, internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)))
			return err
		},
	}

	rootCmd.AddCommand(
		newSimulateCmd(),
		newMergeCmd(),
		newSummarizeCmd(),
		newDecodeCmd(),
	)
	return rootCmd
}

func newSimulateCmd() *cobra.Command {
	var (
		designPath string
		outdir     string
		sets       int
		workers    int
		rscriptBin string
		script     string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate read counts for every design row",
		Long: `Run the external simulator once per design row and replicate set.

Rows with theta 0.5 are written under <outdir>/H1_null, all others under
<outdir>/H1_not_null, with output prefix out_set_<i>.

Example: asepower simulate --design c2_not_null.csv --outdir sims --sets 2 --script simulate_read_counts_NBmodel.r`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			if !cmd.Flags().Changed("sets") {
				sets = cfg.Simulator.Sets
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Pipeline.Workers
			}
			if cmd.Flags().Changed("rscript") || cmd.Flags().Changed("script") {
				if !cmd.Flags().Changed("rscript") {
					rscriptBin = cfg.Simulator.Rscript
				}
				if !cmd.Flags().Changed("script") {
					script = cfg.Simulator.Script
				}
				deps.WithSimulator(rscript.NewSimulator(rscriptBin, script, deps.Logger))
			}

			resp, err := deps.SimulationService.Run(cmd.Context(), app.SimulationRequest{
				Design:    designPath,
				OutputDir: outdir,
				Sets:      sets,
				Workers:   workers,
			})
			if err != nil {
				return err
			}

			fmt.Printf("🧬 Simulated %d datasets into %s\n", len(resp.Jobs), outdir)
			fmt.Printf("Manifest: %s\n", resp.ManifestPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&designPath, "design", "d", "", "Design file with simulation parameters (CSV, TSV or XLSX)")
	cmd.Flags().StringVarP(&outdir, "outdir", "o", "", "Directory to write simulated datasets to")
	cmd.Flags().IntVarP(&sets, "sets", "s", 2, "Number of replicate sets per design row (env ASEPOWER_SIM_SETS)")
	cmd.Flags().IntVar(&workers, "workers", 1, "Concurrent simulator processes (env ASEPOWER_WORKERS)")
	cmd.Flags().StringVar(&rscriptBin, "rscript", "Rscript", "Rscript binary (env ASEPOWER_RSCRIPT)")
	cmd.Flags().StringVar(&script, "script", "", "Simulator script (env ASEPOWER_SIM_SCRIPT)")
	_ = cmd.MarkFlagRequired("design")
	_ = cmd.MarkFlagRequired("outdir")

	return cmd
}

func newMergeCmd() *cobra.Command {
	var req app.MergeRequest

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge per-condition simulations into comparison datasets",
		Long: `Pair the rows of two condition designs and merge the matching simulated
datasets column-wise, condition 1 first.

The hypothesis category follows from the designs:
- both not null:          H1 not null, H2 not null, H3 null
- condition 2 not null:   H1 null, H2 not null, H3 not null
- both null:              H1 null, H2 null, H3 null

Example: asepower merge --design1 c1_null.csv --design2 c2_not_null.csv --simroot sims`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				req.Workers = deps.Config.Pipeline.Workers
			}

			resp, err := deps.MergeService.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Printf("🔗 %s\n", resp.Category)
			fmt.Printf("Merged: %d datasets into %s\n", len(resp.Results), resp.OutputDir)
			if resp.Dropped > 0 || resp.Duplicates > 0 {
				fmt.Printf("Dropped: %d unmatched rows, %d duplicates\n", resp.Dropped, resp.Duplicates)
			}
			fmt.Printf("Manifest: %s\n", resp.ManifestPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Design1, "design1", "", "Condition 1 design file")
	cmd.Flags().StringVar(&req.Design2, "design2", "", "Condition 2 design file")
	cmd.Flags().StringVarP(&req.SimulationRoot, "simroot", "i", "", "Directory holding H1_null and H1_not_null simulations")
	cmd.Flags().StringVarP(&req.OutputDir, "outdir", "o", "", "Output directory (default <simroot>/<category dir>)")
	cmd.Flags().StringVar(&req.FeatureColumn, "feature-column", "", "Feature identifier column (default FEATURE_ID)")
	cmd.Flags().IntVar(&req.Workers, "workers", 1, "Concurrent merges (env ASEPOWER_WORKERS)")
	cmd.Flags().BoolVar(&req.SameImbalance, "same-imbalance", false, "Require equal thetas when both conditions are not null")
	_ = cmd.MarkFlagRequired("design1")
	_ = cmd.MarkFlagRequired("design2")
	_ = cmd.MarkFlagRequired("simroot")

	return cmd
}

func newSummarizeCmd() *cobra.Command {
	var (
		req     app.SummaryRequest
		outdir  string
		exclude string
		store   bool
	)

	cmd := &cobra.Command{
		Use:   "summarize [result-dir...]",
		Short: "Summarize posterior estimates across simulated scenarios",
		Long: `Read every fitting-engine result table in the given directories and write
one summary row per table.

Files ending in an excluded suffix (default r_out and temp) are skipped.
Any malformed table stops the run before anything is written.

Example: asepower summarize H1_null_H2_not_null_H3_not_null H1_null_H2_null_H3_null -o results`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			req.Dirs = args
			req.Output = filepath.Join(outdir, cfg.Pipeline.SummaryFile)
			req.ExcludeSuffixes = cfg.Pipeline.ExcludeSuffixes
			if cmd.Flags().Changed("exclude") {
				req.ExcludeSuffixes = splitList(exclude)
			}
			if !cmd.Flags().Changed("workers") {
				req.Workers = cfg.Pipeline.Workers
			}

			if store {
				if err := deps.InitWithDatabase(cmd.Context()); err != nil {
					return err
				}
				defer deps.Shutdown(cmd.Context())
			}

			resp, err := deps.SummaryService.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Printf("📊 Summarized %d scenarios\n", len(resp.Rows))
			for _, sink := range resp.Sinks {
				fmt.Printf("Wrote: %s\n", sink)
			}
			fmt.Printf("Manifest: %s\n", resp.ManifestPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outdir, "outdir", "o", ".", "Directory for the summary table (file name from ASEPOWER_SUMMARY_FILE)")
	cmd.Flags().StringVar(&req.XLSX, "xlsx", "", "Also write the summary as an XLSX workbook")
	cmd.Flags().StringVar(&exclude, "exclude", "", "Comma-separated file name suffixes to skip (env ASEPOWER_EXCLUDE_SUFFIXES)")
	cmd.Flags().IntVar(&req.Workers, "workers", 1, "Concurrent file reads (env ASEPOWER_WORKERS)")
	cmd.Flags().BoolVar(&req.SortByScenario, "sort", false, "Order rows by scenario instead of file order")
	cmd.Flags().BoolVar(&store, "store", false, "Also store the summary in Postgres (DATABASE_URL)")

	return cmd
}

func newDecodeCmd() *cobra.Command {
	var condition int

	cmd := &cobra.Command{
		Use:   "decode [name...]",
		Short: "Decode simulation file names and comparison identifiers",
		Long: `Print the scenario encoded in a simulated file name (out_set_N_theta_...) or
a comparison identifier (theta1_..._theta2_... or a single theta with --condition).

Example: asepower decode out_set_1_theta_0.5_rsim-g1_0.8_rsim-g2_0.8_nbiorep_3_allelicreads_120_simruns_100.tsv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				out, err := decode(name, scenario.Condition(condition))
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&condition, "condition", "c", 0, "Condition (1 or 2) a single-theta identifier belongs to")

	return cmd
}

type decoded struct {
	Name       string               `json:"name"`
	Set        int                  `json:"set,omitempty"`
	Key        *scenario.Key        `json:"key,omitempty"`
	Comparison *scenario.Comparison `json:"comparison,omitempty"`
}

func decode(name string, cond scenario.Condition) (*decoded, error) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "out_set_") {
		k, set, err := scenario.ParseName(base)
		if err != nil {
			return nil, err
		}
		return &decoded{Name: name, Set: set, Key: &k}, nil
	}
	if !cond.Valid() {
		cond = scenario.ConditionFromDir(filepath.Dir(name))
	}
	c, err := scenario.DecodeComparison(base, cond)
	if err != nil {
		return nil, err
	}
	return &decoded{Name: name, Comparison: &c}, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
