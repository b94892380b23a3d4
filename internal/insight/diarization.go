package insight

import (
	"sort"
	"strings"

	"github.com/pegsys/transcript-insights/internal/transcript"
)

const (
	detailedStyleMinWords       = 50
	conversationalStyleMinWords = 20
	questioningStyleMinRatio    = 0.3
	interruptionMaxWords        = 3
	interruptionPrevMinWords    = 10
	maxDominantTopics           = 3
)

// AnalyzeDiarization profiles every participant with at least one
// message. Participants absent from the corpus are not emitted.
func AnalyzeDiarization(corpus transcript.Corpus) []Diarization {
	totalMessages := corpus.Len()
	results := make([]Diarization, 0, len(corpus.Roster()))

	for _, speaker := range corpus.Roster() {
		speakerMessages := messagesBySpeaker(corpus.Messages(), speaker)
		if len(speakerMessages) == 0 {
			continue
		}

		messageCount := len(speakerMessages)
		wordCount := 0
		questionCount := 0
		for _, msg := range speakerMessages {
			wordCount += transcript.WordCount(msg.Text)
			if strings.Contains(msg.Text, "?") {
				questionCount++
			}
		}

		speakerText := strings.ToLower(joinMessageText(speakerMessages))
		results = append(results, Diarization{
			Speaker:                  speaker,
			SpeakingPercentage:       safeRatio(float64(messageCount), float64(totalMessages)) * 100,
			TotalWords:               wordCount,
			AverageMessageLength:     safeRatio(float64(wordCount), float64(messageCount)),
			InterruptionCount:        countInterruptions(speakerMessages),
			QuestionCount:            questionCount,
			StatementCount:           messageCount - questionCount,
			DominantTopics:           dominantTopicsFor(speakerText),
			CommunicationStyle:       communicationStyle(speakerMessages, wordCount, questionCount),
			TechnicalVocabularyScore: technicalVocabularyScore(speakerText),
		})
	}

	return results
}

// countInterruptions scans the speaker's own message subsequence for a
// very short message immediately following one of their own long
// messages. Cross-speaker adjacency is deliberately not considered.
func countInterruptions(speakerMessages []transcript.Message) int {
	count := 0
	for i := 1; i < len(speakerMessages); i++ {
		short := transcript.WordCount(speakerMessages[i].Text) < interruptionMaxWords
		longBefore := transcript.WordCount(speakerMessages[i-1].Text) > interruptionPrevMinWords
		if short && longBefore {
			count++
		}
	}
	return count
}

// dominantTopicsFor ranks taxonomy groups by keyword-hit count over
// the speaker's full text. Ties keep taxonomy declaration order.
func dominantTopicsFor(loweredText string) []string {
	type groupScore struct {
		name string
		hits int
	}
	scores := make([]groupScore, 0, len(technicalGroups)+len(businessGroups))
	for _, g := range technicalGroups {
		if hits := countKeywordHits(loweredText, g.words); hits > 0 {
			scores = append(scores, groupScore{name: g.name, hits: hits})
		}
	}
	for _, g := range businessGroups {
		if hits := countKeywordHits(loweredText, g.words); hits > 0 {
			scores = append(scores, groupScore{name: g.name, hits: hits})
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].hits > scores[j].hits
	})
	if len(scores) > maxDominantTopics {
		scores = scores[:maxDominantTopics]
	}

	names := make([]string, 0, len(scores))
	for _, s := range scores {
		names = append(names, s.name)
	}
	return names
}

// communicationStyle classifies a speaker on a 3x2 matrix of average
// message length and question ratio.
func communicationStyle(speakerMessages []transcript.Message, wordCount, questionCount int) string {
	avgLength := safeRatio(float64(wordCount), float64(len(speakerMessages)))
	questionRatio := safeRatio(float64(questionCount), float64(len(speakerMessages)))
	inquisitive := questionRatio > questioningStyleMinRatio

	switch {
	case avgLength > detailedStyleMinWords:
		if inquisitive {
			return "detailed_inquisitive"
		}
		return "detailed_explanatory"
	case avgLength > conversationalStyleMinWords:
		if inquisitive {
			return "conversational_questioning"
		}
		return "conversational_informative"
	default:
		if inquisitive {
			return "brief_questioning"
		}
		return "brief_direct"
	}
}

// technicalVocabularyScore is the share of the speaker's words that
// exactly match a technical taxonomy keyword. Multi-word keywords can
// never match a single token; this mirrors the scoring as specified.
func technicalVocabularyScore(loweredText string) float64 {
	words := strings.Fields(loweredText)
	if len(words) == 0 {
		return 0
	}

	vocabulary := make(map[string]struct{}, 64)
	for _, keyword := range allTechnicalKeywords() {
		vocabulary[keyword] = struct{}{}
	}

	hits := 0
	for _, word := range words {
		if _, ok := vocabulary[word]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}
