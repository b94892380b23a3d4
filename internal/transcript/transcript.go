package transcript

import (
	"strings"
	"time"
)

// Message is a single speaker-attributed line of the conversation.
// Corpus order is chronological and semantically significant.
type Message struct {
	Speaker   string `json:"speaker"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// Corpus is an ordered, immutable sequence of messages.
type Corpus struct {
	messages []Message
	roster   []string
}

// NewCorpus copies messages and derives the participant roster in
// first-appearance order.
func NewCorpus(messages []Message) Corpus {
	copied := make([]Message, len(messages))
	copy(copied, messages)

	seen := make(map[string]struct{}, 8)
	roster := make([]string, 0, 8)
	for _, msg := range copied {
		if _, ok := seen[msg.Speaker]; ok {
			continue
		}
		seen[msg.Speaker] = struct{}{}
		roster = append(roster, msg.Speaker)
	}

	return Corpus{messages: copied, roster: roster}
}

// Len returns the number of messages.
func (c Corpus) Len() int { return len(c.messages) }

// Message returns the message at index i.
func (c Corpus) Message(i int) Message { return c.messages[i] }

// Messages returns the full ordered slice. Callers must not mutate it.
func (c Corpus) Messages() []Message { return c.messages }

// Slice returns messages in the inclusive index span [first, last].
func (c Corpus) Slice(first, last int) []Message {
	if first < 0 || last >= len(c.messages) || first > last {
		return nil
	}
	return c.messages[first : last+1]
}

// Roster returns unique speaker ids in first-appearance order.
func (c Corpus) Roster() []string { return c.roster }

// WordCount counts whitespace-separated words in a message text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 3:04 PM",
}

// ParseTimestamp tries the known transcript timestamp layouts.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DurationMinutes is the span between two timestamps in minutes.
// Unparseable or inverted timestamps resolve to 0.
func DurationMinutes(start, end string) float64 {
	s, okS := ParseTimestamp(start)
	e, okE := ParseTimestamp(end)
	if !okS || !okE {
		return 0
	}
	minutes := e.Sub(s).Minutes()
	if minutes < 0 {
		return 0
	}
	return minutes
}
