package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"brandpulse/internal/domain"
)

// Gateway is the remote BrandPulse API as seen by the sessions.
type Gateway interface {
	SearchNews(ctx context.Context, keyword string) ([]domain.Article, error)
	SaveArticle(ctx context.Context, article domain.Article) (*domain.Article, error)
	ListWatchlist(ctx context.Context) ([]domain.Article, error)
	RemoveArticle(ctx context.Context, id string) error
}

type Notifier interface {
	Notify(title, message string, severity domain.Severity)
}
