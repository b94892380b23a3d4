package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pegsys/transcript-insights/internal/config"
	"github.com/pegsys/transcript-insights/internal/insight"
	"github.com/pegsys/transcript-insights/internal/sentiment"
	"github.com/pegsys/transcript-insights/internal/textgen"
	"github.com/pegsys/transcript-insights/internal/transcript"
)

// AnalyzeResult is what the CLI reports after a run.
type AnalyzeResult struct {
	RunID        string
	TopicCount   int
	InsightCount int
}

// RunAnalyze loads a parsed transcript, extracts the full insight
// report, writes it as JSON, and optionally persists the run.
func RunAnalyze(cfg AnalyzeConfig) (AnalyzeResult, error) {
	runtime, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return AnalyzeResult{}, err
	}
	logger := newLogger(runtime.LogLevel)

	loaded, err := transcript.LoadFile(cfg.InputPath)
	if err != nil {
		return AnalyzeResult{}, err
	}
	if loaded.Skipped > 0 {
		logger.WithFields(logrus.Fields{
			"file":    loaded.SourceFile,
			"skipped": loaded.Skipped,
		}).Warn("skipped malformed transcript records")
	}

	generator, model, err := buildGenerator(cfg, runtime, logger)
	if err != nil {
		return AnalyzeResult{}, err
	}

	aggregator := insight.NewAggregator(insight.AggregatorConfig{
		Scorer:    sentiment.New(),
		Generator: generator,
		Model:     model,
		Workers:   runtime.Workers,
		Logger:    logger,
	})
	report := aggregator.Extract(context.Background(), loaded.Corpus)

	if err := writeReportJSON(cfg.OutputPath, report); err != nil {
		return AnalyzeResult{}, err
	}

	if strings.TrimSpace(cfg.DBPath) != "" {
		store, err := OpenInsightStore(cfg.DBPath)
		if err != nil {
			return AnalyzeResult{}, err
		}
		defer store.Close()
		if err := store.InsertReport(report, loaded.SourceFile); err != nil {
			return AnalyzeResult{}, err
		}
	}

	return AnalyzeResult{
		RunID:        report.ExtractionMetadata.RunID,
		TopicCount:   report.SummaryStatistics.TotalTopics,
		InsightCount: report.SummaryStatistics.TotalInsights,
	}, nil
}

// buildGenerator wires the text-generation capability. A missing API
// key is not an error: the pipeline degrades to heuristic insights.
func buildGenerator(cfg AnalyzeConfig, runtime *config.Root, logger *logrus.Logger) (insight.TextGenerator, string, error) {
	gen := runtime.Generation
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = gen.Model
	}
	if cfg.DisableAI {
		logger.Info("text generation disabled, using heuristic insights")
		return nil, model, nil
	}
	if strings.TrimSpace(gen.APIKey) == "" {
		logger.Warn("no generation api key configured, using heuristic insights")
		return nil, model, nil
	}

	client, err := textgen.NewClient(textgen.Config{
		Provider:   gen.Provider,
		APIKey:     gen.APIKey,
		Endpoint:   gen.Endpoint,
		Model:      model,
		APIVersion: gen.APIVersion,
	}, nil)
	if err != nil {
		return nil, "", fmt.Errorf("configure text generation: %w", err)
	}
	return client, client.Model(), nil
}

func writeReportJSON(path string, report insight.Report) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), defaultOutputPerms); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}
