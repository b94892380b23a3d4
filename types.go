package main

const (
	defaultSQLitePath  = "out/insights.db"
	defaultOutputPath  = "out/insights.json"
	defaultConfigPath  = "config.yaml"
	defaultOutputPerms = 0o644
)

// AnalyzeConfig describes one analyze run: where to read the parsed
// transcript and where to write the report.
type AnalyzeConfig struct {
	InputPath  string
	OutputPath string
	DBPath     string
	ConfigPath string
	Model      string
	DisableAI  bool
}
