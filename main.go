package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

func main() {
	log.SetFlags(0)
	if err := runCLI(); err != nil {
		log.Fatalf("error: %v", err)
	}
}

func runCLI() error {
	if len(os.Args) < 2 {
		printUsage()
		return nil
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "analyze":
		return runAnalyzeCmd(args)
	case "report":
		return runReportCmd(args)
	case "setup":
		return runSetupCmd(args)
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func runAnalyzeCmd(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	inPath := fs.String("in", "", "Path to parsed transcript JSON (required)")
	outPath := fs.String("out", defaultOutputPath, "Path to output report JSON")
	dbPath := fs.String("db", "", "Path to SQLite DB file; empty skips persistence")
	configPath := fs.String("config", defaultConfigPath, "Path to YAML config")
	model := fs.String("model", "", "Override generation model name")
	noAI := fs.Bool("no-ai", false, "Disable text generation, use heuristic insights")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return fmt.Errorf("analyze requires --in <transcript.json>")
	}

	result, err := RunAnalyze(AnalyzeConfig{
		InputPath:  *inPath,
		OutputPath: *outPath,
		DBPath:     *dbPath,
		ConfigPath: *configPath,
		Model:      *model,
		DisableAI:  *noAI,
	})
	if err != nil {
		return err
	}
	fmt.Printf("run_id=%s topics=%d insights=%d out=%s\n",
		result.RunID, result.TopicCount, result.InsightCount, *outPath)
	return nil
}

func runReportCmd(args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	dbPath := fs.String("db", defaultSQLitePath, "Path to SQLite DB file")
	markdown := fs.Bool("markdown", false, "Render the report as markdown")
	if err := fs.Parse(args); err != nil {
		return err
	}

	report, err := BuildReport(*dbPath)
	if err != nil {
		return err
	}
	if *markdown {
		fmt.Print(FormatReportMarkdown(report))
		return nil
	}
	PrintReport(report)
	return nil
}

func runSetupCmd(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	dbPath := fs.String("db", defaultSQLitePath, "Path to SQLite DB file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := SetupSQLite(*dbPath); err != nil {
		return err
	}
	fmt.Printf("schema ready db=%s\n", *dbPath)
	return nil
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run . analyze --in parsed_transcript.json --out out/insights.json [--db out/insights.db] [--model gpt-4o] [--no-ai]")
	fmt.Println("  go run . report --db out/insights.db [--markdown]")
	fmt.Println("  go run . setup --db out/insights.db")
}
