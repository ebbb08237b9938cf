package domain

import (
	"strings"
	"time"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Known reports whether s is one of the three labels the classifier emits.
func (s Sentiment) Known() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

type Article struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Published string     `json:"published"`
	Summary   string     `json:"summary"`
	Source    string     `json:"source"`
	Sentiment Sentiment  `json:"sentiment"`
	Keyword   string     `json:"keyword"`
	SavedAt   *time.Time `json:"saved_at,omitempty"`
}

var publishedLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02",
}

// PublishedAt parses the feed date. The second result is false when the
// remote delivered a format none of the known layouts accept.
func (a Article) PublishedAt() (time.Time, bool) {
	raw := strings.TrimSpace(a.Published)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SentimentStats holds per-label counts for a result set.
type SentimentStats struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

func (s SentimentStats) Total() int {
	return s.Positive + s.Negative + s.Neutral
}

// Aggregate counts articles by sentiment. Unknown labels are skipped.
func Aggregate(articles []Article) SentimentStats {
	var stats SentimentStats
	for _, a := range articles {
		switch a.Sentiment {
		case SentimentPositive:
			stats.Positive++
		case SentimentNegative:
			stats.Negative++
		case SentimentNeutral:
			stats.Neutral++
		}
	}
	return stats
}
