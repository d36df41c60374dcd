package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"datadigest/adapters/datareadiness/coercer"
	"datadigest/adapters/excel"
	"datadigest/domain/dataset"
	"datadigest/internal"
	"datadigest/internal/analysis"
	"datadigest/internal/config"
	"datadigest/internal/widgets"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "datadigest",
		Short:        "Summarize CSV and Excel datasets for question answering",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newSummarizeCmd(),
		newAskCmd(),
		newContextCmd(),
		newReportCmd(),
		newDashboardCmd(),
	)
	return rootCmd
}

// session is a loaded file plus the analysis settings from the environment
type session struct {
	cfg        *config.Config
	dataset    *dataset.Dataset
	summarizer *analysis.Summarizer
	logger     *internal.Logger
}

func openSession(path string) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))

	reader := excel.NewDataReader(cfg.ReaderConfig(), coercer.NewTypeCoercer(cfg.CoercerConfig()), logger)
	ds, _, err := reader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:        cfg,
		dataset:    ds,
		summarizer: analysis.NewSummarizer(cfg.AnalysisOptions(), logger),
		logger:     logger,
	}, nil
}

func (s *session) summary() *dataset.DataSummary {
	return s.summarizer.Summary(s.dataset)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize [file]",
		Short: "Print the bounded summary text of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.summarizer.SummaryText(s.dataset))
			return nil
		},
	}
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [file] [query]",
		Short: "Show the precomputed aggregation most relevant to a question",
		Long: `Match a free-text question against the precomputed aggregations.

Example: datadigest ask sales.csv "Which region has the highest sales?"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			agg, ok := s.summarizer.RelevantAggregation(s.dataset, args[1])
			if !ok {
				fmt.Fprintln(out, "No matching aggregation.")
				return nil
			}
			fmt.Fprintln(out, agg.Description)
			for _, gv := range agg.Data {
				fmt.Fprintf(out, "  %-24s %g\n", gv.Group, gv.Value)
			}
			return nil
		},
	}
}

func newContextCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "context [file]",
		Short: "Print the AI context payload as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0])
			if err != nil {
				return err
			}
			payload := analysis.BuildContextPayload(s.dataset, s.summary(), query, s.cfg.AnalysisOptions())
			return writeJSON(cmd.OutOrStdout(), payload)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Question used to pick the relevant aggregation")
	return cmd
}

func newReportCmd() *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Render a markdown (or HTML) report of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asHTML {
				_, err = out.Write(analysis.RenderHTMLReport(s.summary(), s.cfg.AnalysisOptions()))
				return err
			}
			_, err = io.WriteString(out, analysis.RenderMarkdownReport(s.summary(), s.cfg.AnalysisOptions()))
			return err
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of markdown")
	return cmd
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard [file] [request]",
		Short: "Plan dashboard widgets for a request and print them as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0])
			if err != nil {
				return err
			}
			planner := widgets.NewPlanner(nil, s.cfg.AnalysisOptions(), s.logger)
			instructions := planner.Plan(args[1], s.dataset, s.summary())
			if len(instructions) == 0 {
				return fmt.Errorf("could not generate charts from %s: no rows", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"components":  instructions,
				"explanation": widgets.Explain(len(instructions), s.dataset.Name()),
			})
		},
	}
}
