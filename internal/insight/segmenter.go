package insight

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"sort"
	"strings"

	"github.com/pegsys/transcript-insights/internal/transcript"
)

var transitionPhrases = []string{
	"moving on", "next topic", "switching to", "let's talk about",
	"on another note", "changing subjects", "speaking of",
}

const (
	transitionWindow   = 3
	transitionDelta    = 0.3
	subcategoryGeneral = "general_discussion"
	generalTitle       = "General Discussion"
)

type bufferedMessage struct {
	index  int
	msg    transcript.Message
	scores map[string]float64
}

// segmenterState holds the only mutable resource of the pipeline: the
// current buffer and the running per-label max accumulator. It is owned
// exclusively by one sequential pass.
type segmenterState struct {
	rosterSize  int
	buffer      []bufferedMessage
	accumulated map[string]float64
	subcategory string
	category    string
	topics      []TopicDiscussion
}

// SegmentTopics consumes the corpus sequentially and emits ordered
// TopicDiscussion records whose index spans partition the corpus with
// no gaps or overlaps. Deterministic for a fixed corpus.
func SegmentTopics(corpus transcript.Corpus) []TopicDiscussion {
	state := segmenterState{rosterSize: len(corpus.Roster())}

	for i := 0; i < corpus.Len(); i++ {
		msg := corpus.Message(i)
		scores := ClassifyMessage(msg.Text)

		if state.isTransition(msg.Text, scores) {
			state.finalize()
			state.start(i, msg, scores)
			continue
		}
		state.append(i, msg, scores)
	}
	state.finalize()

	return state.topics
}

// isTransition checks the three triggers in order: empty buffer, a
// literal transition phrase, and a >0.3 jump of the label-score vector
// against the mean of the last three buffered messages.
func (s *segmenterState) isTransition(text string, scores map[string]float64) bool {
	if len(s.buffer) == 0 {
		return true
	}

	lowered := strings.ToLower(text)
	for _, phrase := range transitionPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}

	if len(s.buffer) < transitionWindow {
		return false
	}
	recent := s.buffer[len(s.buffer)-transitionWindow:]
	mean := meanScores(recent)
	for _, label := range labelOrder {
		current, inCurrent := scores[label]
		avg, inMean := mean[label]
		if !inCurrent && !inMean {
			continue
		}
		if abs(current-avg) > transitionDelta {
			return true
		}
	}
	return false
}

func meanScores(window []bufferedMessage) map[string]float64 {
	mean := make(map[string]float64, 4)
	for _, buffered := range window {
		for label, score := range buffered.scores {
			mean[label] += score
		}
	}
	for label := range mean {
		mean[label] /= float64(len(window))
	}
	return mean
}

// start seeds a new buffer with the triggering message. The primary
// label is the highest-scoring label; iteration over the fixed label
// order makes first-seen win ties.
func (s *segmenterState) start(index int, msg transcript.Message, scores map[string]float64) {
	s.subcategory = subcategoryGeneral
	s.category = categoryGeneral
	best := 0.0
	for _, label := range labelOrder {
		score, ok := scores[label]
		if !ok {
			continue
		}
		if score > best {
			best = score
			s.subcategory = label
			s.category = categoryByLabel[label]
		}
	}

	s.accumulated = make(map[string]float64, len(scores))
	for label, score := range scores {
		s.accumulated[label] = score
	}
	s.buffer = []bufferedMessage{{index: index, msg: msg, scores: scores}}
}

// append adds a non-transition message and merges its scores into the
// accumulator via per-label max.
func (s *segmenterState) append(index int, msg transcript.Message, scores map[string]float64) {
	s.buffer = append(s.buffer, bufferedMessage{index: index, msg: msg, scores: scores})
	for label, score := range scores {
		if score > s.accumulated[label] {
			s.accumulated[label] = score
		}
	}
}

// finalize converts the pending buffer into a TopicDiscussion.
func (s *segmenterState) finalize() {
	if len(s.buffer) == 0 {
		return
	}

	messages := make([]transcript.Message, 0, len(s.buffer))
	for _, buffered := range s.buffer {
		messages = append(messages, buffered.msg)
	}

	title := topicTitle(messages)
	content := ExtractKeyContent(messages)
	first := s.buffer[0]
	last := s.buffer[len(s.buffer)-1]

	s.topics = append(s.topics, TopicDiscussion{
		ID:              topicID(title),
		Title:           title,
		Tags:            s.topicTags(messages),
		Category:        s.category,
		Subcategory:     s.subcategory,
		StartTime:       first.msg.Timestamp,
		EndTime:         last.msg.Timestamp,
		DurationMinutes: transcript.DurationMinutes(first.msg.Timestamp, last.msg.Timestamp),
		MessageCount:    len(messages),
		Speakers:        uniqueSpeakers(messages),
		KeyPoints:       content.KeyPoints,
		Decisions:       content.Decisions,
		ActionItems:     content.ActionItems,
		ContextScore:    s.contextScore(messages),
		FirstMessage:    first.index,
		LastMessage:     last.index,
	})

	s.buffer = nil
	s.accumulated = nil
}

// topicTags combines accumulated label tags (score > 0.1, underscores
// hyphenated) with the behavioral cue tags of the buffered text.
func (s *segmenterState) topicTags(messages []transcript.Message) []string {
	tags := make([]string, 0, 8)
	for _, label := range labelOrder {
		if s.accumulated[label] > 0.1 {
			tags = append(tags, strings.ReplaceAll(label, "_", "-"))
		}
	}
	tags = append(tags, behavioralTags(strings.ToLower(joinMessageText(messages)))...)
	return tags
}

// contextScore blends textual volume and speaker breadth.
func (s *segmenterState) contextScore(messages []transcript.Message) float64 {
	totalLength := 0
	for _, msg := range messages {
		totalLength += len(msg.Text)
	}
	lengthScore := clamp01(float64(totalLength) / 1000)
	speakerScore := safeRatio(float64(len(uniqueSpeakers(messages))), float64(s.rosterSize))
	return (lengthScore + speakerScore) / 2
}

var titleWordPattern = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)

var titleStopwords = map[string]struct{}{
	"that": {}, "this": {}, "with": {}, "have": {}, "will": {}, "from": {},
	"they": {}, "been": {}, "were": {}, "said": {}, "each": {}, "which": {},
	"their": {}, "time": {}, "like": {}, "just": {}, "know": {}, "think": {},
	"want": {}, "need": {}, "make": {}, "come": {}, "going": {}, "really": {},
	"would": {}, "could": {}, "should": {},
}

// topicTitle picks the three most frequent meaningful words across the
// buffered messages. Ties break by first occurrence.
func topicTitle(messages []transcript.Message) string {
	counts := make(map[string]int, 32)
	order := make([]string, 0, 32)

	words := titleWordPattern.FindAllString(strings.ToLower(joinMessageText(messages)), -1)
	for _, word := range words {
		if _, stop := titleStopwords[word]; stop {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 3 {
		order = order[:3]
	}
	if len(order) == 0 {
		return generalTitle
	}

	for i, word := range order {
		order[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(order, " ")
}

// topicID derives a stable content hash from the normalized title,
// reproducible across runs and implementations.
func topicID(title string) string {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(title))))
	return fmt.Sprintf("topic_%016x", h.Sum64())
}

func uniqueSpeakers(messages []transcript.Message) []string {
	seen := make(map[string]struct{}, 4)
	speakers := make([]string, 0, 4)
	for _, msg := range messages {
		if _, ok := seen[msg.Speaker]; ok {
			continue
		}
		seen[msg.Speaker] = struct{}{}
		speakers = append(speakers, msg.Speaker)
	}
	return speakers
}

func joinMessageText(messages []transcript.Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, msg.Text)
	}
	return strings.Join(parts, " ")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
