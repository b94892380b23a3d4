package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// rawMessage tolerates both field spellings the parsing collaborator
// has produced over time ("text" and the legacy "message").
type rawMessage struct {
	Speaker   string `json:"speaker"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
	Legacy    string `json:"message"`
}

type parsedTranscript struct {
	MeetingInfo struct {
		Date          string   `json:"date"`
		Participants  []string `json:"participants"`
		TotalMessages int      `json:"total_messages"`
	} `json:"meeting_info"`
	Conversation []rawMessage `json:"conversation"`
}

// LoadResult is the outcome of reading one transcript file.
type LoadResult struct {
	Corpus     Corpus
	SourceFile string
	Skipped    int
}

// LoadFile reads a parsed-transcript JSON file. Both the wrapped
// {meeting_info, conversation} document and a bare message array are
// accepted. Records missing a speaker or text are skipped, not fatal.
func LoadFile(path string) (LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("read transcript %q: %w", path, err)
	}
	corpus, skipped, err := Decode(data)
	if err != nil {
		return LoadResult{}, fmt.Errorf("parse transcript %q: %w", path, err)
	}
	return LoadResult{Corpus: corpus, SourceFile: path, Skipped: skipped}, nil
}

// Decode parses transcript JSON into a corpus, returning the number of
// malformed records that were skipped.
func Decode(data []byte) (Corpus, int, error) {
	if len(data) == 0 {
		return Corpus{}, 0, errors.New("empty transcript document")
	}

	var raws []rawMessage
	var doc parsedTranscript
	if err := json.Unmarshal(data, &doc); err == nil && doc.Conversation != nil {
		raws = doc.Conversation
	} else if err := json.Unmarshal(data, &raws); err != nil {
		return Corpus{}, 0, fmt.Errorf("unsupported transcript format: %w", err)
	}

	messages := make([]Message, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		text := raw.Text
		if strings.TrimSpace(text) == "" {
			text = raw.Legacy
		}
		if strings.TrimSpace(raw.Speaker) == "" || strings.TrimSpace(text) == "" {
			skipped++
			continue
		}
		messages = append(messages, Message{
			Speaker:   strings.TrimSpace(raw.Speaker),
			Timestamp: strings.TrimSpace(raw.Timestamp),
			Text:      text,
		})
	}

	return NewCorpus(messages), skipped, nil
}
