package gateway

import "brandpulse/internal/domain"

type searchRequest struct {
	Keyword string `json:"keyword"`
}

// searchResponse mirrors POST /api/news/search. Message is only set when
// the backend found nothing.
type searchResponse struct {
	Articles []domain.Article `json:"articles"`
	Message  string           `json:"message,omitempty"`
}

// saveRequest is the ArticleCreate payload; the backend assigns its own id.
type saveRequest struct {
	Title     string           `json:"title"`
	Link      string           `json:"link"`
	Published string           `json:"published"`
	Summary   string           `json:"summary"`
	Source    string           `json:"source"`
	Sentiment domain.Sentiment `json:"sentiment"`
	Keyword   string           `json:"keyword"`
}

type sentimentRequest struct {
	Headline string `json:"headline"`
}

type sentimentResponse struct {
	Sentiment domain.Sentiment `json:"sentiment"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
