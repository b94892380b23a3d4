package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/pegsys/transcript-insights/internal/insight"
)

const createRunsTableSQL = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT NOT NULL,
	created_at_utc TEXT NOT NULL,
	source_file TEXT NOT NULL,
	total_messages INTEGER NOT NULL,
	participants_json TEXT NOT NULL,
	total_topics INTEGER NOT NULL,
	total_insights INTEGER NOT NULL,
	overall_sentiment TEXT NOT NULL,
	most_active_speaker TEXT NOT NULL,
	analysis_version TEXT NOT NULL,
	PRIMARY KEY (run_id)
)`

const createTopicsTableSQL = `
CREATE TABLE IF NOT EXISTS topics (
	run_id TEXT NOT NULL,
	topic_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	category TEXT NOT NULL,
	subcategory TEXT NOT NULL,
	tags_json TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	duration_minutes REAL NOT NULL,
	message_count INTEGER NOT NULL,
	speakers_json TEXT NOT NULL,
	key_points_json TEXT NOT NULL,
	decisions_json TEXT NOT NULL,
	action_items_json TEXT NOT NULL,
	context_score REAL NOT NULL,
	PRIMARY KEY (run_id, position)
)`

const createSpeakerInsightsTableSQL = `
CREATE TABLE IF NOT EXISTS speaker_insights (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	topic_id TEXT NOT NULL,
	speaker TEXT NOT NULL,
	insight TEXT NOT NULL,
	tags_json TEXT NOT NULL,
	confidence_score REAL NOT NULL,
	evidence_json TEXT NOT NULL,
	sentiment TEXT NOT NULL,
	expertise_level TEXT NOT NULL,
	engagement_level TEXT NOT NULL
)`

const createDiarizationTableSQL = `
CREATE TABLE IF NOT EXISTS diarization_stats (
	run_id TEXT NOT NULL,
	speaker TEXT NOT NULL,
	speaking_percentage REAL NOT NULL,
	total_words INTEGER NOT NULL,
	average_message_length REAL NOT NULL,
	interruption_count INTEGER NOT NULL,
	question_count INTEGER NOT NULL,
	statement_count INTEGER NOT NULL,
	dominant_topics_json TEXT NOT NULL,
	communication_style TEXT NOT NULL,
	technical_vocabulary_score REAL NOT NULL,
	PRIMARY KEY (run_id, speaker)
)`

var createInsightIndexesSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_topics_category ON topics(category)`,
	`CREATE INDEX IF NOT EXISTS idx_speaker_insights_lookup ON speaker_insights(run_id, topic_id, speaker)`,
	`CREATE INDEX IF NOT EXISTS idx_speaker_insights_sentiment ON speaker_insights(sentiment)`,
	`CREATE INDEX IF NOT EXISTS idx_diarization_speaker ON diarization_stats(speaker)`,
}

const dropRunsSQL = `DROP TABLE IF EXISTS runs`
const dropTopicsSQL = `DROP TABLE IF EXISTS topics`
const dropSpeakerInsightsSQL = `DROP TABLE IF EXISTS speaker_insights`
const dropDiarizationSQL = `DROP TABLE IF EXISTS diarization_stats`

const insertRunSQL = `
INSERT INTO runs (
	run_id,
	created_at_utc,
	source_file,
	total_messages,
	participants_json,
	total_topics,
	total_insights,
	overall_sentiment,
	most_active_speaker,
	analysis_version
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertTopicSQL = `
INSERT INTO topics (
	run_id,
	topic_id,
	position,
	title,
	category,
	subcategory,
	tags_json,
	start_time,
	end_time,
	duration_minutes,
	message_count,
	speakers_json,
	key_points_json,
	decisions_json,
	action_items_json,
	context_score
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertSpeakerInsightSQL = `
INSERT INTO speaker_insights (
	run_id,
	topic_id,
	speaker,
	insight,
	tags_json,
	confidence_score,
	evidence_json,
	sentiment,
	expertise_level,
	engagement_level
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertDiarizationSQL = `
INSERT INTO diarization_stats (
	run_id,
	speaker,
	speaking_percentage,
	total_words,
	average_message_length,
	interruption_count,
	question_count,
	statement_count,
	dominant_topics_json,
	communication_style,
	technical_vocabulary_score
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsightStore is a minimal wrapper for persisting analysis runs.
type InsightStore struct {
	db *sql.DB
}

func OpenInsightStore(dbPath string) (*InsightStore, error) {
	db, err := openSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	if err := ensureStoreSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &InsightStore{db: db}, nil
}

func (s *InsightStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InsertReport writes one full run in a single transaction.
func (s *InsightStore) InsertReport(report insight.Report, sourceFile string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("insight store is not initialized")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin run transaction: %w", err)
	}
	defer tx.Rollback()

	meta := report.ExtractionMetadata
	if _, err := tx.Exec(
		insertRunSQL,
		meta.RunID,
		meta.Timestamp,
		strings.TrimSpace(sourceFile),
		meta.TotalMessagesAnalyzed,
		mustJSON(meta.Participants),
		report.SummaryStatistics.TotalTopics,
		report.SummaryStatistics.TotalInsights,
		report.SentimentAnalysis.OverallSentiment,
		report.SummaryStatistics.MostActiveSpeaker,
		meta.AnalysisVersion,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for position, topic := range report.Topics {
		if _, err := tx.Exec(
			insertTopicSQL,
			meta.RunID,
			topic.ID,
			position,
			topic.Title,
			topic.Category,
			topic.Subcategory,
			mustJSON(topic.Tags),
			topic.StartTime,
			topic.EndTime,
			topic.DurationMinutes,
			topic.MessageCount,
			mustJSON(topic.Speakers),
			mustJSON(topic.KeyPoints),
			mustJSON(topic.Decisions),
			mustJSON(topic.ActionItems),
			topic.ContextScore,
		); err != nil {
			return fmt.Errorf("insert topic %s: %w", topic.ID, err)
		}
	}

	for _, si := range report.SpeakerInsights {
		if _, err := tx.Exec(
			insertSpeakerInsightSQL,
			meta.RunID,
			si.TopicID,
			si.Speaker,
			si.Insight,
			mustJSON(si.Tags),
			si.ConfidenceScore,
			mustJSON(si.SupportingEvidence),
			si.Sentiment,
			si.ExpertiseLevel,
			si.EngagementLevel,
		); err != nil {
			return fmt.Errorf("insert speaker insight: %w", err)
		}
	}

	for _, d := range report.Diarization {
		if _, err := tx.Exec(
			insertDiarizationSQL,
			meta.RunID,
			d.Speaker,
			d.SpeakingPercentage,
			d.TotalWords,
			d.AverageMessageLength,
			d.InterruptionCount,
			d.QuestionCount,
			d.StatementCount,
			mustJSON(d.DominantTopics),
			d.CommunicationStyle,
			d.TechnicalVocabularyScore,
		); err != nil {
			return fmt.Errorf("insert diarization row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run transaction: %w", err)
	}
	return nil
}

// mustJSON marshals values already validated by the aggregator; only
// marshal-proof types reach it, so errors degrade to "[]".
func mustJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func openSQLite(dbPath string) (*sql.DB, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}

func ensureStoreSchema(db *sql.DB) error {
	tables := []struct {
		name      string
		createSQL string
		columns   []string
	}{
		{"runs", createRunsTableSQL, requiredRunColumns()},
		{"topics", createTopicsTableSQL, requiredTopicColumns()},
		{"speaker_insights", createSpeakerInsightsTableSQL, requiredSpeakerInsightColumns()},
		{"diarization_stats", createDiarizationTableSQL, requiredDiarizationColumns()},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.createSQL); err != nil {
			return fmt.Errorf("create %s table: %w", table.name, err)
		}
		missing, err := missingTableColumns(db, table.name, table.columns)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return fmt.Errorf(
				"incompatible %s schema, missing columns: %s; run `go run . setup --db <path>`",
				table.name, strings.Join(missing, ", "),
			)
		}
	}

	for _, stmt := range createInsightIndexesSQL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func requiredRunColumns() []string {
	return []string{
		"run_id",
		"created_at_utc",
		"source_file",
		"total_messages",
		"participants_json",
		"total_topics",
		"total_insights",
		"overall_sentiment",
		"most_active_speaker",
		"analysis_version",
	}
}

func requiredTopicColumns() []string {
	return []string{
		"run_id",
		"topic_id",
		"position",
		"title",
		"category",
		"subcategory",
		"tags_json",
		"start_time",
		"end_time",
		"duration_minutes",
		"message_count",
		"speakers_json",
		"key_points_json",
		"decisions_json",
		"action_items_json",
		"context_score",
	}
}

func requiredSpeakerInsightColumns() []string {
	return []string{
		"id",
		"run_id",
		"topic_id",
		"speaker",
		"insight",
		"tags_json",
		"confidence_score",
		"evidence_json",
		"sentiment",
		"expertise_level",
		"engagement_level",
	}
}

func requiredDiarizationColumns() []string {
	return []string{
		"run_id",
		"speaker",
		"speaking_percentage",
		"total_words",
		"average_message_length",
		"interruption_count",
		"question_count",
		"statement_count",
		"dominant_topics_json",
		"communication_style",
		"technical_vocabulary_score",
	}
}

func missingTableColumns(db *sql.DB, tableName string, required []string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, tableName))
	if err != nil {
		return nil, fmt.Errorf("inspect %s schema: %w", tableName, err)
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var cid int
		var name string
		var colType string
		var notNull int
		var defaultValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, fmt.Errorf("scan %s schema: %w", tableName, err)
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s schema: %w", tableName, err)
	}

	var missing []string
	for _, col := range required {
		if _, ok := existing[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing, nil
}

func SetupSQLite(dbPath string) error {
	if strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("db path is required")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := openSQLite(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, stmt := range []string{dropRunsSQL, dropTopicsSQL, dropSpeakerInsightsSQL, dropDiarizationSQL} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return ensureStoreSchema(db)
}
