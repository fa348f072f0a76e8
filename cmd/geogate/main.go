package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"geogate/internal/config"
	"geogate/internal/dedup"
	"geogate/internal/export"
	"geogate/internal/generator"
	"geogate/internal/llm"
	"geogate/internal/llm/anthropic"
	"geogate/internal/llm/mock"
	"geogate/internal/llm/openai"
	"geogate/internal/observability"
	"geogate/internal/pipeline"
	"geogate/internal/research"
	"geogate/internal/scorer"
	"geogate/internal/topics"
	"geogate/pkg/logger"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	var (
		inputPath  string
		outputPath string
		configPath string
		workers    int
		withWeb    bool
	)

	rootCmd := &cobra.Command{
		Use:   "geogate",
		Short: "Quality and uniqueness gate for generated articles",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Generate, score and deduplicate articles for a topic list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), configPath, inputPath, outputPath, workers, withWeb)
		},
	}
	runCmd.Flags().StringVar(&inputPath, "input", "", "Topics file (JSON or YAML)")
	runCmd.Flags().StringVar(&outputPath, "output", "out", "Output directory")
	runCmd.Flags().StringVar(&configPath, "config", "configs/geogate.yaml", "Config file path")
	runCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent topic workers (0 = from config)")
	runCmd.Flags().BoolVar(&withWeb, "research", false, "Enrich prompts with web search context")
	_ = runCmd.MarkFlagRequired("input")

	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "List available text-generation providers",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Available providers:")
			fmt.Println()
			fmt.Println("  openai     https://api.openai.com/v1 (also DeepSeek, Groq, vLLM via base_url)")
			fmt.Println("  anthropic  https://api.anthropic.com/v1 (needs an OpenAI-compatible embed endpoint)")
			fmt.Println("  mock       offline deterministic provider, no API key")
			fmt.Println()
			fmt.Println("Configure in configs/geogate.yaml or via environment:")
			fmt.Println("  GEOGATE_LLM_PROVIDER=openai")
			fmt.Println("  GEOGATE_LLM_API_KEY=sk-...")
			fmt.Println("  GEOGATE_LLM_MODEL=gpt-4o")
		},
	}

	rootCmd.AddCommand(runCmd, providersCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runPipeline(ctx context.Context, configPath, inputPath, outputPath string, workers int, withWeb bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	list, err := topics.Load(inputPath)
	if err != nil {
		return err
	}
	log.Info("topics loaded", slog.Int("count", len(list)), slog.String("path", inputPath))

	tp, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:    "geogate",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Tracing.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	genProvider, embedProvider, err := buildProviders(cfg)
	if err != nil {
		return err
	}
	genProvider = llm.WithRateLimit(genProvider, cfg.LLM.RequestsPerMinute)

	index, err := buildIndex(ctx, cfg)
	if err != nil {
		return err
	}
	defer index.Close()

	gen := generator.New(genProvider, generator.Config{
		MaxAttempts: cfg.LLM.MaxAttempts,
		BackoffBase: cfg.LLM.BackoffBase,
		Timeout:     cfg.LLM.RequestTimeout,
		Temperature: cfg.LLM.Temperature,
	}, log)

	sc := scorer.New(scorer.Config{
		MinSources:    cfg.Scoring.MinSources,
		MinWordCount:  cfg.Scoring.MinWordCount,
		MetaDescMin:   cfg.Scoring.MetaDescMin,
		MetaDescMax:   cfg.Scoring.MetaDescMax,
		MaxIntroLines: cfg.Scoring.MaxIntroLines,
	})

	dd := dedup.New(embedProvider, index, cfg.Dedup.Threshold)

	opts := pipeline.Options{Workers: cfg.Pipeline.Workers}
	if workers > 0 {
		opts.Workers = workers
	}
	if withWeb || cfg.Research.Enabled {
		opts.Research = research.New(log, cfg.Research.MaxSources)
	}

	if cfg.Pipeline.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Pipeline.Deadline)
		defer cancel()
	}

	p := pipeline.New(gen, sc, dd, index, log, opts)
	results, summary, runErr := p.Run(ctx, list)

	exp, err := export.New(outputPath)
	if err != nil {
		return err
	}
	for _, res := range results {
		if err := exp.WriteResult(res); err != nil {
			log.Error("export failed", slog.String("topic", res.Topic.Title), slog.Any("error", err))
		}
	}
	summaryPath, err := exp.WriteSummary(summary)
	if err != nil {
		return err
	}

	printSummary(summary, results, summaryPath)

	if runErr != nil {
		return fmt.Errorf("run aborted: %w", runErr)
	}
	return nil
}

func buildProviders(cfg *config.Config) (gen llm.Provider, embed llm.Provider, err error) {
	switch cfg.LLM.Provider {
	case "", "mock":
		m := mock.New()
		return m, m, nil
	case "openai":
		c := openai.New(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.EmbedModel)
		return c, c, nil
	case "anthropic":
		gen = anthropic.New(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
		embedKey := os.Getenv("OPENAI_API_KEY")
		if embedKey == "" {
			return nil, nil, fmt.Errorf("provider anthropic has no embedding endpoint; set OPENAI_API_KEY for embeddings")
		}
		return gen, openai.New(embedKey, "", "", cfg.LLM.EmbedModel), nil
	default:
		return nil, nil, fmt.Errorf("unknown provider %q (see `geogate providers`)", cfg.LLM.Provider)
	}
}

func buildIndex(ctx context.Context, cfg *config.Config) (dedup.Index, error) {
	switch cfg.Dedup.Backend {
	case "", "memory":
		return dedup.NewMemoryIndex(), nil
	case "qdrant":
		return dedup.NewQdrant(ctx, cfg.Dedup.Qdrant.Host, cfg.Dedup.Qdrant.Port, cfg.Dedup.Qdrant.Collection)
	case "pgvector":
		return dedup.NewPGVector(ctx, cfg.Dedup.Postgres.DSN, cfg.Dedup.Dimensions)
	default:
		return nil, fmt.Errorf("unknown dedup backend %q", cfg.Dedup.Backend)
	}
}

func printSummary(s pipeline.Summary, results []pipeline.Result, summaryPath string) {
	fmt.Println()
	fmt.Println("Run summary")
	fmt.Println("-----------")
	for _, res := range results {
		score := "-"
		if res.Score != nil {
			score = fmt.Sprintf("%d/100", res.Score.Total)
		}
		detail := ""
		switch res.Status {
		case pipeline.StatusRejectedDuplicate:
			detail = fmt.Sprintf(" (similarity %.3f)", res.NearestSimilarity)
		case pipeline.StatusFailed, pipeline.StatusRejectedStructure:
			if res.Err != nil {
				detail = fmt.Sprintf(" (%v)", res.Err)
			}
		}
		fmt.Printf("  %-45s %-20s %s%s\n", truncate(res.Topic.Title, 45), res.Status, score, detail)
	}
	fmt.Println()
	fmt.Printf("  %s\n", s)
	fmt.Printf("  average score: %.1f/100\n", s.AverageScore)
	fmt.Printf("  summary written to %s\n", summaryPath)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
