package insight

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pegsys/transcript-insights/internal/transcript"
)

const defaultInsightWorkers = 4

// AggregatorConfig carries the injected capabilities and provider
// settings explicitly; there is no ambient singleton.
type AggregatorConfig struct {
	Scorer    SentimentScorer
	Generator TextGenerator
	Model     string
	Workers   int
	Logger    *logrus.Logger
}

// Aggregator runs the pipeline stages in dependency order and
// assembles the final report.
type Aggregator struct {
	engine    *SentimentEngine
	generator *SpeakerInsightGenerator
	workers   int
	log       *logrus.Logger
}

// NewAggregator wires the pipeline from one explicit configuration.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultInsightWorkers
	}
	return &Aggregator{
		engine:    NewSentimentEngine(cfg.Scorer),
		generator: NewSpeakerInsightGenerator(cfg.Generator, cfg.Scorer, cfg.Model, cfg.Logger),
		workers:   workers,
		log:       cfg.Logger,
	}
}

// Extract produces the full report for one corpus. Segmentation runs
// as a single sequential pass; sentiment, diarization, and per-pair
// insight generation then run concurrently over the fixed topics. An
// empty corpus yields a well-formed empty report.
func (a *Aggregator) Extract(ctx context.Context, corpus transcript.Corpus) Report {
	topics := SegmentTopics(corpus)
	if topics == nil {
		topics = []TopicDiscussion{}
	}
	if a.log != nil {
		a.log.WithFields(logrus.Fields{
			"messages": corpus.Len(),
			"speakers": len(corpus.Roster()),
			"topics":   len(topics),
		}).Info("topic segmentation complete")
	}

	var sentimentResult SentimentAnalysis
	var diarizationResult []Diarization

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sentimentResult = a.engine.Analyze(corpus, topics)
	}()
	go func() {
		defer wg.Done()
		diarizationResult = AnalyzeDiarization(corpus)
	}()

	insights := a.generateInsights(ctx, corpus, topics)
	wg.Wait()

	if diarizationResult == nil {
		diarizationResult = []Diarization{}
	}

	report := Report{
		ExtractionMetadata: ExtractionMetadata{
			RunID:                 uuid.NewString(),
			Timestamp:             time.Now().UTC().Format(time.RFC3339),
			TotalMessagesAnalyzed: corpus.Len(),
			Participants:          corpus.Roster(),
			AnalysisVersion:       analysisVersion,
		},
		Topics:            topics,
		SpeakerInsights:   insights,
		SentimentAnalysis: sentimentResult,
		Diarization:       diarizationResult,
		SummaryStatistics: summarize(topics, insights, diarizationResult),
	}

	if a.log != nil {
		a.log.WithFields(logrus.Fields{
			"run_id":   report.ExtractionMetadata.RunID,
			"topics":   len(topics),
			"insights": len(insights),
		}).Info("insight extraction complete")
	}
	return report
}

// generateInsights dispatches the (topic, speaker) pairs to a bounded
// worker pool. Results land in a pre-sized slice indexed by pair, so
// output order is deterministic regardless of scheduling. A failed or
// panicking pair degrades only itself.
func (a *Aggregator) generateInsights(ctx context.Context, corpus transcript.Corpus, topics []TopicDiscussion) []SpeakerInsight {
	pairs := CollectPairs(corpus, topics)
	insights := make([]SpeakerInsight, len(pairs))
	if len(pairs) == 0 {
		return []SpeakerInsight{}
	}

	workers := a.workers
	if workers > len(pairs) {
		workers = len(pairs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				insights[idx] = a.generatePair(ctx, pairs[idx])
			}
		}()
	}
	for idx := range pairs {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return insights
}

func (a *Aggregator) generatePair(ctx context.Context, pair pairKey) (result SpeakerInsight) {
	defer func() {
		if r := recover(); r != nil {
			if a.log != nil {
				a.log.WithFields(logrus.Fields{
					"topic_id": pair.topic.ID,
					"speaker":  pair.speaker,
					"panic":    r,
				}).Error("insight generation recovered")
			}
			result = SpeakerInsight{
				Speaker:            pair.speaker,
				TopicID:            pair.topic.ID,
				Insight:            heuristicInsight(pair.speaker, pair.topic.Title, pair.msgs),
				Tags:               []string{},
				SupportingEvidence: supportingEvidence(pair.msgs),
				Sentiment:          SentimentNeutral,
				ExpertiseLevel:     ExpertiseNovice,
				EngagementLevel:    EngagementLow,
			}
		}
	}()
	return a.generator.Generate(ctx, pair)
}

func summarize(topics []TopicDiscussion, insights []SpeakerInsight, diarization []Diarization) SummaryStatistics {
	totalDuration := 0.0
	categoryCounts := make(map[string]int, 4)
	categoryOrder := make([]string, 0, 4)
	tagCounts := make(map[string]int, 16)
	tagOrder := make([]string, 0, 16)

	for _, topic := range topics {
		totalDuration += topic.DurationMinutes
		if categoryCounts[topic.Category] == 0 {
			categoryOrder = append(categoryOrder, topic.Category)
		}
		categoryCounts[topic.Category]++
		for _, tag := range topic.Tags {
			if tagCounts[tag] == 0 {
				tagOrder = append(tagOrder, tag)
			}
			tagCounts[tag]++
		}
	}

	mostActive := ""
	best := -1.0
	for _, d := range diarization {
		if d.SpeakingPercentage > best {
			best = d.SpeakingPercentage
			mostActive = d.Speaker
		}
	}

	return SummaryStatistics{
		TotalTopics:          len(topics),
		TotalInsights:        len(insights),
		AverageTopicDuration: safeRatio(totalDuration, float64(len(topics))),
		MostActiveSpeaker:    mostActive,
		DominantCategories:   topCounted(categoryOrder, categoryCounts, 3),
		KeyThemes:            topCounted(tagOrder, tagCounts, 5),
	}
}

// topCounted ranks first-seen-ordered keys by count, stable on ties.
func topCounted(order []string, counts map[string]int, n int) []string {
	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
