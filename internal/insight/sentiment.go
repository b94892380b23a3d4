package insight

import (
	"strings"

	"github.com/pegsys/transcript-insights/internal/transcript"
)

const (
	positiveThreshold  = 0.15
	negativeThreshold  = -0.15
	intenseThreshold   = 0.5
	timelineWindowSize = 10
)

var emotionWords = []string{"excited", "love", "hate", "angry", "worried"}

// SentimentEngine computes polarity/subjectivity aggregates for the
// whole corpus, per speaker, per topic, and over a sliding timeline.
// The actual scoring is delegated to the injected capability.
type SentimentEngine struct {
	scorer SentimentScorer
}

// NewSentimentEngine wraps a scoring capability. A nil scorer degrades
// to neutral (0, 0) scores rather than failing.
func NewSentimentEngine(scorer SentimentScorer) *SentimentEngine {
	return &SentimentEngine{scorer: scorer}
}

func (e *SentimentEngine) score(text string) (float64, float64) {
	if e == nil || e.scorer == nil || strings.TrimSpace(text) == "" {
		return 0, 0
	}
	return e.scorer.Score(text)
}

// Analyze builds the full sentiment artifact. Topics must already be
// segmented; only immutable prior products are read.
func (e *SentimentEngine) Analyze(corpus transcript.Corpus, topics []TopicDiscussion) SentimentAnalysis {
	allText := joinMessageText(corpus.Messages())
	overallPolarity, _ := e.score(allText)

	analysis := SentimentAnalysis{
		OverallSentiment:   classifySentiment(overallPolarity),
		Confidence:         abs(overallPolarity),
		EmotionalIntensity: abs(overallPolarity),
		SpeakerSentiments:  make(map[string]SpeakerSentiment, len(corpus.Roster())),
		TopicSentiments:    make(map[string]TopicSentiment, len(topics)),
		SentimentTimeline:  e.timeline(corpus),
	}

	for _, speaker := range corpus.Roster() {
		speakerMessages := messagesBySpeaker(corpus.Messages(), speaker)
		speakerText := joinMessageText(speakerMessages)
		polarity, subjectivity := e.score(speakerText)
		analysis.SpeakerSentiments[speaker] = SpeakerSentiment{
			OverallSentiment:   classifySentiment(polarity),
			Polarity:           polarity,
			Subjectivity:       subjectivity,
			EmotionalIntensity: abs(polarity),
			MessageCount:       len(speakerMessages),
			Tags:               sentimentTags(polarity, subjectivity, speakerText),
		}
	}

	for _, topic := range topics {
		topicMessages := corpus.Slice(topic.FirstMessage, topic.LastMessage)
		topicText := joinMessageText(topicMessages)
		polarity, subjectivity := e.score(topicText)
		analysis.TopicSentiments[topic.ID] = TopicSentiment{
			Sentiment:     classifySentiment(polarity),
			Polarity:      polarity,
			Subjectivity:  subjectivity,
			Tags:          sentimentTags(polarity, subjectivity, topicText),
			Participation: topicParticipation(topicMessages),
		}
	}

	return analysis
}

// timeline partitions the corpus into fixed windows of ten messages;
// the final window may be shorter.
func (e *SentimentEngine) timeline(corpus transcript.Corpus) []TimelineWindow {
	total := corpus.Len()
	windows := make([]TimelineWindow, 0, total/timelineWindowSize+1)

	for start := 0; start < total; start += timelineWindowSize {
		end := start + timelineWindowSize - 1
		if end > total-1 {
			end = total - 1
		}
		chunk := corpus.Slice(start, end)
		polarity, subjectivity := e.score(joinMessageText(chunk))
		windows = append(windows, TimelineWindow{
			StartMessage: start,
			EndMessage:   end,
			Timestamp:    chunk[0].Timestamp,
			Sentiment:    classifySentiment(polarity),
			Polarity:     polarity,
			Subjectivity: subjectivity,
		})
	}
	return windows
}

// classifySentiment maps polarity to a label. Boundaries are strict:
// exactly ±0.15 is still neutral.
func classifySentiment(polarity float64) string {
	switch {
	case polarity > positiveThreshold:
		return SentimentPositive
	case polarity < negativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func sentimentTags(polarity, subjectivity float64, text string) []string {
	tags := make([]string, 0, 4)
	tags = append(tags, classifySentiment(polarity))
	if subjectivity > 0.5 {
		tags = append(tags, "subjective")
	} else {
		tags = append(tags, "objective")
	}
	if abs(polarity) > intenseThreshold {
		tags = append(tags, "intense")
	}
	lowered := strings.ToLower(text)
	for _, w := range emotionWords {
		if matchesKeyword(lowered, w) {
			tags = append(tags, "emotional")
			break
		}
	}
	return tags
}

// topicParticipation computes per-speaker share of a topic's messages.
// Speakers iterate in first-appearance order, so the most-active pick
// is deterministic: strictly greater counts win.
func topicParticipation(topicMessages []transcript.Message) TopicParticipation {
	counts := make(map[string]int, 4)
	order := make([]string, 0, 4)
	for _, msg := range topicMessages {
		if counts[msg.Speaker] == 0 {
			order = append(order, msg.Speaker)
		}
		counts[msg.Speaker]++
	}

	total := len(topicMessages)
	participation := TopicParticipation{
		SpeakerParticipation: make(map[string]float64, len(order)),
		UniqueSpeakers:       len(order),
	}
	best := 0
	for _, speaker := range order {
		participation.SpeakerParticipation[speaker] = safeRatio(float64(counts[speaker]), float64(total))
		if counts[speaker] > best {
			best = counts[speaker]
			participation.MostActiveSpeaker = speaker
		}
	}
	return participation
}

func messagesBySpeaker(messages []transcript.Message, speaker string) []transcript.Message {
	out := make([]transcript.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Speaker == speaker {
			out = append(out, msg)
		}
	}
	return out
}
