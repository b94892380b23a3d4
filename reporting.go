package main

import (
	"fmt"
	"sort"
	"strings"
)

type reportMetrics struct {
	TotalRuns     int
	TotalTopics   int
	TotalInsights int

	CategoryCounts []categoryCount

	ConfidenceAvg      float64
	ConfidenceMin      float64
	ConfidenceMax      float64
	ConfidenceGTE70    int
	ConfidenceRowCount int

	PositiveInsights int
	NeutralInsights  int
	NegativeInsights int

	SpeakerActivity []speakerActivityItem

	LatestRunID            string
	LatestRunCreatedAt     string
	LatestRunTopics        int
	LatestRunInsights      int
	LatestRunSentiment     string
	LatestRunActiveSpeaker string

	LowConfidenceItems []lowConfidenceItem
}

type categoryCount struct {
	Category string
	Count    int
}

type speakerActivityItem struct {
	Speaker           string
	Runs              int
	AvgSpeakingPct    float64
	TotalWords        int
	QuestionsAsked    int
	InterruptionCount int
}

type lowConfidenceItem struct {
	RunID           string
	Speaker         string
	TopicID         string
	ConfidenceScore float64
}

const maxLowConfidenceItems = 10

func BuildReport(dbPath string) (reportMetrics, error) {
	db, err := openSQLite(dbPath)
	if err != nil {
		return reportMetrics{}, err
	}
	defer db.Close()
	if err := ensureStoreSchema(db); err != nil {
		return reportMetrics{}, err
	}

	report := reportMetrics{}

	runRows, err := db.Query(`
		SELECT run_id, created_at_utc, total_topics, total_insights, overall_sentiment, most_active_speaker
		FROM runs
		ORDER BY created_at_utc
	`)
	if err != nil {
		return reportMetrics{}, fmt.Errorf("query runs: %w", err)
	}
	defer runRows.Close()
	for runRows.Next() {
		var runID, createdAt, overallSentiment, activeSpeaker string
		var totalTopics, totalInsights int
		if err := runRows.Scan(&runID, &createdAt, &totalTopics, &totalInsights, &overallSentiment, &activeSpeaker); err != nil {
			return reportMetrics{}, fmt.Errorf("scan run row: %w", err)
		}
		report.TotalRuns++
		report.LatestRunID = runID
		report.LatestRunCreatedAt = createdAt
		report.LatestRunTopics = totalTopics
		report.LatestRunInsights = totalInsights
		report.LatestRunSentiment = overallSentiment
		report.LatestRunActiveSpeaker = activeSpeaker
	}
	if err := runRows.Err(); err != nil {
		return reportMetrics{}, fmt.Errorf("iterate run rows: %w", err)
	}

	categoryRows, err := db.Query(`
		SELECT category, COUNT(*) FROM topics GROUP BY category
	`)
	if err != nil {
		return reportMetrics{}, fmt.Errorf("query topic categories: %w", err)
	}
	defer categoryRows.Close()
	for categoryRows.Next() {
		var item categoryCount
		if err := categoryRows.Scan(&item.Category, &item.Count); err != nil {
			return reportMetrics{}, fmt.Errorf("scan category row: %w", err)
		}
		report.TotalTopics += item.Count
		report.CategoryCounts = append(report.CategoryCounts, item)
	}
	if err := categoryRows.Err(); err != nil {
		return reportMetrics{}, fmt.Errorf("iterate category rows: %w", err)
	}
	sort.Slice(report.CategoryCounts, func(i, j int) bool {
		if report.CategoryCounts[i].Count == report.CategoryCounts[j].Count {
			return report.CategoryCounts[i].Category < report.CategoryCounts[j].Category
		}
		return report.CategoryCounts[i].Count > report.CategoryCounts[j].Count
	})

	insightRows, err := db.Query(`
		SELECT run_id, speaker, topic_id, confidence_score, sentiment FROM speaker_insights
	`)
	if err != nil {
		return reportMetrics{}, fmt.Errorf("query speaker insights: %w", err)
	}
	defer insightRows.Close()
	for insightRows.Next() {
		var runID, speaker, topicID, sentimentLabel string
		var confidence float64
		if err := insightRows.Scan(&runID, &speaker, &topicID, &confidence, &sentimentLabel); err != nil {
			return reportMetrics{}, fmt.Errorf("scan insight row: %w", err)
		}

		report.TotalInsights++
		report.ConfidenceRowCount++
		if report.ConfidenceRowCount == 1 {
			report.ConfidenceMin = confidence
			report.ConfidenceMax = confidence
		}
		if confidence < report.ConfidenceMin {
			report.ConfidenceMin = confidence
		}
		if confidence > report.ConfidenceMax {
			report.ConfidenceMax = confidence
		}
		report.ConfidenceAvg += confidence
		if confidence >= 0.70 {
			report.ConfidenceGTE70++
		}

		switch sentimentLabel {
		case "positive":
			report.PositiveInsights++
		case "negative":
			report.NegativeInsights++
		default:
			report.NeutralInsights++
		}

		report.LowConfidenceItems = append(report.LowConfidenceItems, lowConfidenceItem{
			RunID:           runID,
			Speaker:         speaker,
			TopicID:         topicID,
			ConfidenceScore: confidence,
		})
	}
	if err := insightRows.Err(); err != nil {
		return reportMetrics{}, fmt.Errorf("iterate insight rows: %w", err)
	}
	if report.ConfidenceRowCount > 0 {
		report.ConfidenceAvg = report.ConfidenceAvg / float64(report.ConfidenceRowCount)
	}

	sort.Slice(report.LowConfidenceItems, func(i, j int) bool {
		if report.LowConfidenceItems[i].ConfidenceScore == report.LowConfidenceItems[j].ConfidenceScore {
			if report.LowConfidenceItems[i].RunID == report.LowConfidenceItems[j].RunID {
				return report.LowConfidenceItems[i].Speaker < report.LowConfidenceItems[j].Speaker
			}
			return report.LowConfidenceItems[i].RunID < report.LowConfidenceItems[j].RunID
		}
		return report.LowConfidenceItems[i].ConfidenceScore < report.LowConfidenceItems[j].ConfidenceScore
	})
	if len(report.LowConfidenceItems) > maxLowConfidenceItems {
		report.LowConfidenceItems = report.LowConfidenceItems[:maxLowConfidenceItems]
	}

	speakerRows, err := db.Query(`
		SELECT speaker, COUNT(*), AVG(speaking_percentage), SUM(total_words), SUM(question_count), SUM(interruption_count)
		FROM diarization_stats
		GROUP BY speaker
	`)
	if err != nil {
		return reportMetrics{}, fmt.Errorf("query diarization stats: %w", err)
	}
	defer speakerRows.Close()
	for speakerRows.Next() {
		var item speakerActivityItem
		if err := speakerRows.Scan(
			&item.Speaker,
			&item.Runs,
			&item.AvgSpeakingPct,
			&item.TotalWords,
			&item.QuestionsAsked,
			&item.InterruptionCount,
		); err != nil {
			return reportMetrics{}, fmt.Errorf("scan diarization row: %w", err)
		}
		report.SpeakerActivity = append(report.SpeakerActivity, item)
	}
	if err := speakerRows.Err(); err != nil {
		return reportMetrics{}, fmt.Errorf("iterate diarization rows: %w", err)
	}
	sort.Slice(report.SpeakerActivity, func(i, j int) bool {
		if report.SpeakerActivity[i].AvgSpeakingPct == report.SpeakerActivity[j].AvgSpeakingPct {
			return report.SpeakerActivity[i].Speaker < report.SpeakerActivity[j].Speaker
		}
		return report.SpeakerActivity[i].AvgSpeakingPct > report.SpeakerActivity[j].AvgSpeakingPct
	})

	return report, nil
}

func FormatReportMarkdown(r reportMetrics) string {
	var b strings.Builder
	b.WriteString("# Transcript Insights\n\n")
	b.WriteString("## Totals\n")
	b.WriteString(fmt.Sprintf("- total_runs: `%d`\n", r.TotalRuns))
	b.WriteString(fmt.Sprintf("- total_topics: `%d`\n", r.TotalTopics))
	b.WriteString(fmt.Sprintf("- total_insights: `%d`\n\n", r.TotalInsights))

	b.WriteString("## Latest Run\n")
	if r.LatestRunID == "" {
		b.WriteString("- none\n\n")
	} else {
		b.WriteString(fmt.Sprintf("- run_id: `%s`\n", r.LatestRunID))
		b.WriteString(fmt.Sprintf("- created_at: `%s`\n", r.LatestRunCreatedAt))
		b.WriteString(fmt.Sprintf("- topics: `%d`\n", r.LatestRunTopics))
		b.WriteString(fmt.Sprintf("- insights: `%d`\n", r.LatestRunInsights))
		b.WriteString(fmt.Sprintf("- overall_sentiment: `%s`\n", r.LatestRunSentiment))
		b.WriteString(fmt.Sprintf("- most_active_speaker: `%s`\n\n", r.LatestRunActiveSpeaker))
	}

	b.WriteString("## Topic Categories\n")
	if len(r.CategoryCounts) == 0 {
		b.WriteString("- none\n\n")
	} else {
		b.WriteString("| category | topics |\n")
		b.WriteString("| --- | ---: |\n")
		for _, item := range r.CategoryCounts {
			b.WriteString(fmt.Sprintf("| `%s` | `%d` |\n", item.Category, item.Count))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Insight Confidence\n")
	b.WriteString(fmt.Sprintf("- avg_confidence: `%.4f`\n", r.ConfidenceAvg))
	b.WriteString(fmt.Sprintf("- min_confidence: `%.4f`\n", r.ConfidenceMin))
	b.WriteString(fmt.Sprintf("- max_confidence: `%.4f`\n", r.ConfidenceMax))
	b.WriteString(fmt.Sprintf("- confidence_gte_0_70_count: `%d`\n\n", r.ConfidenceGTE70))

	b.WriteString("## Insight Sentiment\n")
	b.WriteString(fmt.Sprintf("- positive: `%d`\n", r.PositiveInsights))
	b.WriteString(fmt.Sprintf("- neutral: `%d`\n", r.NeutralInsights))
	b.WriteString(fmt.Sprintf("- negative: `%d`\n\n", r.NegativeInsights))

	b.WriteString("## Speaker Activity\n")
	if len(r.SpeakerActivity) == 0 {
		b.WriteString("- none\n\n")
	} else {
		b.WriteString("| speaker | runs | avg_speaking_pct | total_words | questions | interruptions |\n")
		b.WriteString("| --- | ---: | ---: | ---: | ---: | ---: |\n")
		for _, item := range r.SpeakerActivity {
			b.WriteString(fmt.Sprintf("| `%s` | `%d` | `%.2f` | `%d` | `%d` | `%d` |\n",
				item.Speaker,
				item.Runs,
				item.AvgSpeakingPct,
				item.TotalWords,
				item.QuestionsAsked,
				item.InterruptionCount,
			))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Lowest-Confidence Insights\n")
	if len(r.LowConfidenceItems) == 0 {
		b.WriteString("- none\n")
	} else {
		b.WriteString("| run_id | speaker | topic_id | confidence |\n")
		b.WriteString("| --- | --- | --- | ---: |\n")
		for _, item := range r.LowConfidenceItems {
			b.WriteString(fmt.Sprintf("| `%s` | `%s` | `%s` | `%.4f` |\n",
				item.RunID,
				item.Speaker,
				item.TopicID,
				item.ConfidenceScore,
			))
		}
	}
	return b.String()
}

func FormatReport(r reportMetrics) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("total_runs=%d\n", r.TotalRuns))
	b.WriteString(fmt.Sprintf("total_topics=%d\n", r.TotalTopics))
	b.WriteString(fmt.Sprintf("total_insights=%d\n", r.TotalInsights))
	b.WriteString(fmt.Sprintf("confidence_avg=%.4f\n", r.ConfidenceAvg))
	b.WriteString(fmt.Sprintf("confidence_gte_0_70=%d\n", r.ConfidenceGTE70))
	b.WriteString(fmt.Sprintf("insights_positive=%d\n", r.PositiveInsights))
	b.WriteString(fmt.Sprintf("insights_neutral=%d\n", r.NeutralInsights))
	b.WriteString(fmt.Sprintf("insights_negative=%d\n", r.NegativeInsights))
	if r.LatestRunID != "" {
		b.WriteString(fmt.Sprintf("latest_run_id=%s\n", r.LatestRunID))
		b.WriteString(fmt.Sprintf("latest_run_topics=%d\n", r.LatestRunTopics))
		b.WriteString(fmt.Sprintf("latest_run_insights=%d\n", r.LatestRunInsights))
		b.WriteString(fmt.Sprintf("latest_run_sentiment=%s\n", r.LatestRunSentiment))
	}
	return b.String()
}

func PrintReport(r reportMetrics) {
	fmt.Print(FormatReport(r))
}
