package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pegsys/transcript-insights/internal/transcript"
)

const (
	minMessagesForInsight = 2
	contributionMaxLen    = 500
	evidenceMaxLen        = 150
	maxEvidenceItems      = 3
	insightMaxTokens      = 100
	insightTemperature    = 0.7

	expertiseExpertRatio       = 0.10
	expertiseIntermediateRatio = 0.05

	engagementDominantShare = 0.6
	engagementHighShare     = 0.3
	engagementMediumShare   = 0.1

	defaultGenerateTimeout = 30 * time.Second
)

const insightSystemPrompt = "Generate a concise insight (1-2 sentences) about a speaker's contribution to a topic discussion. Focus on their perspective, expertise, or unique viewpoint."

// SpeakerInsightGenerator produces one natural-language insight per
// (topic, speaker) pair. Generation goes through the injected text
// capability; any failure falls back to the deterministic heuristic.
type SpeakerInsightGenerator struct {
	generator TextGenerator
	scorer    SentimentScorer
	model     string
	timeout   time.Duration
	log       *logrus.Logger
}

// NewSpeakerInsightGenerator builds a generator. A nil TextGenerator
// means heuristic-only operation.
func NewSpeakerInsightGenerator(generator TextGenerator, scorer SentimentScorer, model string, log *logrus.Logger) *SpeakerInsightGenerator {
	return &SpeakerInsightGenerator{
		generator: generator,
		scorer:    scorer,
		model:     model,
		timeout:   defaultGenerateTimeout,
		log:       log,
	}
}

// pairKey identifies one (topic, speaker) unit of work.
type pairKey struct {
	topic   TopicDiscussion
	speaker string
	msgs    []transcript.Message
}

// CollectPairs lists the (topic, speaker) pairs eligible for insight
// generation: the speaker contributed at least two messages within the
// topic's span. Order is topics first, speakers by first appearance.
func CollectPairs(corpus transcript.Corpus, topics []TopicDiscussion) []pairKey {
	pairs := make([]pairKey, 0, len(topics)*2)
	for _, topic := range topics {
		topicMessages := corpus.Slice(topic.FirstMessage, topic.LastMessage)
		for _, speaker := range uniqueSpeakers(topicMessages) {
			msgs := messagesBySpeaker(topicMessages, speaker)
			if len(msgs) >= minMessagesForInsight {
				pairs = append(pairs, pairKey{topic: topic, speaker: speaker, msgs: msgs})
			}
		}
	}
	return pairs
}

// Generate builds the insight for one pair. It never returns an error:
// capability failures degrade to the heuristic text.
func (g *SpeakerInsightGenerator) Generate(ctx context.Context, pair pairKey) SpeakerInsight {
	combined := joinMessageText(pair.msgs)
	lowered := strings.ToLower(combined)

	insightText, err := g.generateText(ctx, pair.speaker, pair.topic.Title, combined)
	if err != nil {
		if g.log != nil {
			g.log.WithFields(logrus.Fields{
				"topic_id": pair.topic.ID,
				"speaker":  pair.speaker,
				"reason":   err.Error(),
			}).Debug("text generation unavailable, using heuristic insight")
		}
		insightText = heuristicInsight(pair.speaker, pair.topic.Title, pair.msgs)
	}

	polarity := 0.0
	if g.scorer != nil && strings.TrimSpace(combined) != "" {
		polarity, _ = g.scorer.Score(combined)
	}

	return SpeakerInsight{
		Speaker:            pair.speaker,
		TopicID:            pair.topic.ID,
		Insight:            insightText,
		Tags:               behavioralTags(lowered),
		ConfidenceScore:    insightConfidence(pair.msgs),
		SupportingEvidence: supportingEvidence(pair.msgs),
		Sentiment:          classifySentiment(polarity),
		ExpertiseLevel:     expertiseLevel(combined),
		EngagementLevel:    engagementLevel(len(pair.msgs), pair.topic.MessageCount),
	}
}

// generateText calls the capability with a bounded context. Empty
// output counts as failure so the fallback always yields usable text.
func (g *SpeakerInsightGenerator) generateText(ctx context.Context, speaker, topicTitle, contribution string) (string, error) {
	if g.generator == nil {
		return "", errors.New("no text generator configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.generator.Generate(callCtx, GenerationRequest{
		Messages: []GenerationMessage{
			{Role: "system", Content: insightSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(
				"Speaker: %s\nTopic: %s\nContribution: %s",
				speaker, topicTitle, truncateRunes(contribution, contributionMaxLen),
			)},
		},
		Model:       g.model,
		MaxTokens:   insightMaxTokens,
		Temperature: insightTemperature,
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("generator returned empty text")
	}
	return text, nil
}

// heuristicInsight is the deterministic local fallback framing.
func heuristicInsight(speaker, topicTitle string, msgs []transcript.Message) string {
	totalChars := 0
	for _, msg := range msgs {
		totalChars += len(msg.Text)
	}
	avgLength := safeRatio(float64(totalChars), float64(len(msgs)))

	switch {
	case avgLength > 100:
		return fmt.Sprintf("%s provided detailed explanations and deep insights on %s", speaker, topicTitle)
	case len(msgs) > 5:
		return fmt.Sprintf("%s was highly engaged in the discussion about %s", speaker, topicTitle)
	default:
		return fmt.Sprintf("%s contributed to the conversation about %s", speaker, topicTitle)
	}
}

// expertiseLevel grades technical-term density of the combined text.
func expertiseLevel(combined string) string {
	wordCount := transcript.WordCount(combined)
	if wordCount == 0 {
		return ExpertiseNovice
	}

	lowered := strings.ToLower(combined)
	hits := countKeywordHits(lowered, allTechnicalKeywords())
	ratio := float64(hits) / float64(wordCount)

	switch {
	case ratio > expertiseExpertRatio:
		return ExpertiseExpert
	case ratio > expertiseIntermediateRatio:
		return ExpertiseIntermediate
	default:
		return ExpertiseNovice
	}
}

// engagementLevel grades the speaker's share of the topic's messages.
func engagementLevel(speakerCount, topicCount int) string {
	share := safeRatio(float64(speakerCount), float64(topicCount))
	switch {
	case share > engagementDominantShare:
		return EngagementDominant
	case share > engagementHighShare:
		return EngagementHigh
	case share > engagementMediumShare:
		return EngagementMedium
	default:
		return EngagementLow
	}
}

func insightConfidence(msgs []transcript.Message) float64 {
	totalChars := 0
	for _, msg := range msgs {
		totalChars += len(msg.Text)
	}
	countScore := clamp01(float64(len(msgs)) / 5)
	lengthScore := clamp01(float64(totalChars) / 500)
	return (countScore + lengthScore) / 2
}

func supportingEvidence(msgs []transcript.Message) []string {
	limit := len(msgs)
	if limit > maxEvidenceItems {
		limit = maxEvidenceItems
	}
	evidence := make([]string, 0, limit)
	for _, msg := range msgs[:limit] {
		evidence = append(evidence, truncateRunes(msg.Text, evidenceMaxLen)+"...")
	}
	return evidence
}
