// Package main provides the CLI entry point for forge-go.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aurea33/forge-go/internal/config"
	"github.com/aurea33/forge-go/internal/httpapi"
	"github.com/aurea33/forge-go/pkg/forge"
	"github.com/aurea33/forge-go/pkg/forge/chartimg"
	"github.com/aurea33/forge-go/pkg/forge/inspect"
	"github.com/aurea33/forge-go/pkg/forge/intent"
	"github.com/aurea33/forge-go/pkg/forge/models"
	"github.com/aurea33/forge-go/pkg/forge/openai"
)

var (
	cfgPath    string
	outputPath string
	pretty     bool
	specPath   string
	themeName  string
	noCharts   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "forge",
		Short: "Generate styled Excel workbooks from prompts or specs",
		Long: `forge-go turns a natural-language prompt or a workbook spec into a
styled .xlsx with a data sheet and a dashboard.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file")

	rootCmd.AddCommand(newServeCmd(), newGenerateCmd(), newIntentCmd(), newInspectCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP generation service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			lg := newLogger(cfg.Log.Format)

			deps := forge.Deps{
				ChartRenderer: chartimg.NewClient(cfg.Chart.URL),
				Logger:        lg,
			}
			if cfg.OpenAI.APIKey != "" {
				deps.SpecProducer = openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
			} else {
				lg.Warn("no OpenAI API key configured, only inline-spec requests will work")
			}

			srv := httpapi.NewServer(cfg, lg, deps)

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				lg.Info("shutting down", "signal", sig.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(ctx)
		},
	}
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate a workbook from a prompt or a spec file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			lg := newLogger(cfg.Log.Format)

			req := models.GenerateRequest{
				Preferences: models.Preferences{Theme: themeName, WantCharts: !noCharts},
			}
			if len(args) == 1 {
				req.Prompt = args[0]
			}
			if specPath != "" {
				raw, err := os.ReadFile(specPath)
				if err != nil {
					return fmt.Errorf("spec read failed: %w", err)
				}
				req.Spec = raw
			}

			deps := forge.Deps{Logger: lg}
			if !noCharts {
				deps.ChartRenderer = chartimg.NewClient(cfg.Chart.URL)
			}
			if req.Spec == nil {
				if cfg.OpenAI.APIKey == "" {
					return errors.New("prompt generation needs FORGE_OPENAI_API_KEY, or pass --spec")
				}
				deps.SpecProducer = openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
			}

			res, err := forge.Generate(cmd.Context(), req, deps)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			out := outputPath
			if out == "" {
				out = res.FileName
			}
			if err := os.WriteFile(out, res.Data, 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			fmt.Println(out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: derived file name)")
	cmd.Flags().StringVar(&specPath, "spec", "", "Path to a workbook spec JSON file (skips the model)")
	cmd.Flags().StringVar(&themeName, "theme", "", "Theme hint, e.g. \"negro con dorado\"")
	cmd.Flags().BoolVar(&noCharts, "no-charts", false, "Skip chart rendering")
	return cmd
}

func newIntentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intent [text...]",
		Short: "Parse a prompt into a structured intent and print it as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it := intent.Parse(strings.Join(args, " "))
			return printJSON(it, pretty)
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [input.xlsx]",
		Short: "Dump the cells and formulas of a generated workbook as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", args[0])
			}
			sheets, err := inspect.Workbook(args[0])
			if err != nil {
				return fmt.Errorf("inspection failed: %w", err)
			}
			return printJSON(sheets, pretty)
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func printJSON(v any, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func newLogger(format string) *slog.Logger {
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stderr, nil)
	} else {
		h = slog.NewTextHandler(os.Stderr, nil)
	}
	return slog.New(h)
}
