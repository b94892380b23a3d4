package insight

import "context"

const analysisVersion = "1.0"

// Expertise ordinals.
const (
	ExpertiseNovice       = "novice"
	ExpertiseIntermediate = "intermediate"
	ExpertiseExpert       = "expert"
)

// Engagement ordinals.
const (
	EngagementLow      = "low"
	EngagementMedium   = "medium"
	EngagementHigh     = "high"
	EngagementDominant = "dominant"
)

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// TopicDiscussion is one contiguous run of messages grouped under an
// inferred subject. Created once by segmentation finalize; read-only
// afterward. FirstMessage/LastMessage are the inclusive corpus index
// span; spans of consecutive topics partition the corpus.
type TopicDiscussion struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Tags            []string `json:"tags"`
	Category        string   `json:"category"`
	Subcategory     string   `json:"subcategory"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	DurationMinutes float64  `json:"duration_minutes"`
	MessageCount    int      `json:"message_count"`
	Speakers        []string `json:"speakers"`
	KeyPoints       []string `json:"key_points"`
	Decisions       []string `json:"decisions"`
	ActionItems     []string `json:"action_items"`
	ContextScore    float64  `json:"context_score"`

	FirstMessage int `json:"-"`
	LastMessage  int `json:"-"`
}

// SpeakerInsight describes one speaker's contribution to one topic.
type SpeakerInsight struct {
	Speaker            string   `json:"speaker"`
	TopicID            string   `json:"topic_id"`
	Insight            string   `json:"insight"`
	Tags               []string `json:"tags"`
	ConfidenceScore    float64  `json:"confidence_score"`
	SupportingEvidence []string `json:"supporting_evidence"`
	Sentiment          string   `json:"sentiment"`
	ExpertiseLevel     string   `json:"expertise_level"`
	EngagementLevel    string   `json:"engagement_level"`
}

// SpeakerSentiment is the per-speaker sentiment breakdown.
type SpeakerSentiment struct {
	OverallSentiment   string   `json:"overall_sentiment"`
	Polarity           float64  `json:"polarity"`
	Subjectivity       float64  `json:"subjectivity"`
	EmotionalIntensity float64  `json:"emotional_intensity"`
	MessageCount       int      `json:"message_count"`
	Tags               []string `json:"tags"`
}

// TopicParticipation is the per-topic speaker share breakdown.
type TopicParticipation struct {
	SpeakerParticipation map[string]float64 `json:"speaker_participation"`
	MostActiveSpeaker    string             `json:"most_active_speaker"`
	UniqueSpeakers       int                `json:"unique_speakers"`
}

// TopicSentiment is the sentiment of one topic's combined text.
type TopicSentiment struct {
	Sentiment     string             `json:"sentiment"`
	Polarity      float64            `json:"polarity"`
	Subjectivity  float64            `json:"subjectivity"`
	Tags          []string           `json:"tags"`
	Participation TopicParticipation `json:"participation"`
}

// TimelineWindow is sentiment over one fixed-size slice of the corpus.
type TimelineWindow struct {
	StartMessage int     `json:"start_message"`
	EndMessage   int     `json:"end_message"`
	Timestamp    string  `json:"timestamp"`
	Sentiment    string  `json:"sentiment"`
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}

// SentimentAnalysis is the full sentiment artifact of one run.
type SentimentAnalysis struct {
	OverallSentiment   string                      `json:"overall_sentiment"`
	Confidence         float64                     `json:"confidence"`
	EmotionalIntensity float64                     `json:"emotional_intensity"`
	SpeakerSentiments  map[string]SpeakerSentiment `json:"speaker_sentiments"`
	TopicSentiments    map[string]TopicSentiment   `json:"topic_sentiments"`
	SentimentTimeline  []TimelineWindow            `json:"sentiment_timeline"`
}

// Diarization is the speaking-pattern profile of one participant.
// Participants with zero messages are not emitted.
type Diarization struct {
	Speaker                  string   `json:"speaker"`
	SpeakingPercentage       float64  `json:"speaking_percentage"`
	TotalWords               int      `json:"total_words"`
	AverageMessageLength     float64  `json:"average_message_length"`
	InterruptionCount        int      `json:"interruption_count"`
	QuestionCount            int      `json:"question_count"`
	StatementCount           int      `json:"statement_count"`
	DominantTopics           []string `json:"dominant_topics"`
	CommunicationStyle       string   `json:"communication_style"`
	TechnicalVocabularyScore float64  `json:"technical_vocabulary_score"`
}

// ExtractionMetadata describes one analysis run.
type ExtractionMetadata struct {
	RunID                 string   `json:"run_id"`
	Timestamp             string   `json:"timestamp"`
	TotalMessagesAnalyzed int      `json:"total_messages_analyzed"`
	Participants          []string `json:"participants"`
	AnalysisVersion       string   `json:"analysis_version"`
}

// SummaryStatistics are run-level rollups.
type SummaryStatistics struct {
	TotalTopics          int      `json:"total_topics"`
	TotalInsights        int      `json:"total_insights"`
	AverageTopicDuration float64  `json:"average_topic_duration"`
	MostActiveSpeaker    string   `json:"most_active_speaker"`
	DominantCategories   []string `json:"dominant_categories"`
	KeyThemes            []string `json:"key_themes"`
}

// Report is the serializable output contract consumed by any rendering
// surface. Field names are stable.
type Report struct {
	ExtractionMetadata ExtractionMetadata `json:"extraction_metadata"`
	Topics             []TopicDiscussion  `json:"topics"`
	SpeakerInsights    []SpeakerInsight   `json:"speaker_insights"`
	SentimentAnalysis  SentimentAnalysis  `json:"sentiment_analysis"`
	Diarization        []Diarization      `json:"diarization"`
	SummaryStatistics  SummaryStatistics  `json:"summary_statistics"`
}

// SentimentScorer is the injected sentiment-scoring capability.
// Implementations must return (0, 0) for empty text and on internal
// failure; they never return an error.
type SentimentScorer interface {
	Score(text string) (polarity, subjectivity float64)
}

// GenerationMessage is one role-tagged message of a generation request.
type GenerationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationRequest is the provider-neutral text-generation input.
type GenerationRequest struct {
	Messages    []GenerationMessage
	Model       string
	MaxTokens   int
	Temperature float64
}

// TextGenerator is the injected text-generation capability. A non-nil
// error (or empty text) is an expected outcome; callers fall back to
// the local heuristic. Provider-specific response shapes must not leak
// through this boundary.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// safeRatio guards every count ratio whose denominator may be zero.
func safeRatio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// truncateRunes cuts text to at most max runes.
func truncateRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
