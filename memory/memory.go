package memory

import (
	"time"
)

type (
	Document struct {
		ID        string    `json:"id"`
		Text      string    `json:"text"`
		Source    Source    `json:"source"`
		Timestamp time.Time `json:"timestamp"`
	}

	Source = string

	// ScoredDocument holds a document with its similarity score
	ScoredDocument struct {
		Document Document `json:"document"`
		Score    float64  `json:"score"`
	}
)

const (
	SourceUser      Source = "user"
	SourceAssistant Source = "assistant"
)
