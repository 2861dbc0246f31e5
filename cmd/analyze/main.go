package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"intelligence-layer/internal/di"
	"intelligence-layer/internal/domain"
	"intelligence-layer/internal/infra/config"
	"intelligence-layer/internal/infra/logger"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		fileURL string
		file    string
		mime    string
		noCache bool
		output  string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a spend or procurement document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (fileURL == "") == (file == "") {
				return errors.New("exactly one of --file-url and --file is required")
			}
			if output != "pretty" && output != "json" {
				return fmt.Errorf("unknown output format %q", output)
			}

			cfg := config.Load()
			log := logger.New()
			if output == "pretty" {
				// keep structured logs off the terminal report
				log = slog.New(slog.DiscardHandler)
			}

			components, err := di.NewApplicationComponents(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer components.Close()

			req := domain.AnalysisRequest{
				FileURL:     fileURL,
				MIMEHint:    mime,
				BypassCache: noCache,
			}
			if file != "" {
				content, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				req.Content = content
			}

			result := components.AnalyzeUsecase.Execute(cmd.Context(), req)
			if output == "json" {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(result); err != nil {
					return err
				}
			} else {
				printPretty(cmd, result)
			}

			if result.Failed() {
				return fmt.Errorf("analysis failed: %s", result[domain.ServiceError].ErrorMessage)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fileURL, "file-url", "", "URL of the document to analyze")
	cmd.Flags().StringVar(&file, "file", "", "Path of a local document to analyze")
	cmd.Flags().StringVar(&mime, "mime", "", "MIME type hint, skips content sniffing")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Recompute even when a cached result exists")
	cmd.Flags().StringVar(&output, "output", "pretty", "Output format: pretty or json")
	cmd.SilenceUsage = true
	return cmd
}

func printPretty(cmd *cobra.Command, result domain.AnalysisResult) {
	out := cmd.OutOrStdout()

	names := make([]string, 0, len(result))
	for name := range result {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		outcome := result[name]
		fmt.Fprintf(out, "== %s (%.2fs)\n", strings.ToUpper(name), outcome.ElapsedSeconds)
		if !outcome.Succeeded {
			fmt.Fprintf(out, "  failed: %s\n\n", outcome.ErrorMessage)
			continue
		}
		switch {
		case outcome.Summary != nil:
			if outcome.Summary.Title != "" {
				fmt.Fprintf(out, "  %s\n", outcome.Summary.Title)
			}
			fmt.Fprintf(out, "  %s\n", outcome.Summary.Summary)
			for _, point := range outcome.Summary.KeyPoints {
				fmt.Fprintf(out, "  - %s\n", point)
			}
		case outcome.Recommendations != nil:
			for _, rec := range outcome.Recommendations.Recommendations {
				fmt.Fprintf(out, "  - %s\n", rec)
			}
		case outcome.Charts != nil:
			for _, chart := range outcome.Charts {
				fmt.Fprintf(out, "  - [%s] %s", chart.ChartType, chart.Purpose)
				if chart.XAxis != "" || chart.YAxis != "" {
					fmt.Fprintf(out, " (x: %s, y: %s)", chart.XAxis, chart.YAxis)
				}
				fmt.Fprintln(out)
			}
		}
		fmt.Fprintln(out)
	}
}
