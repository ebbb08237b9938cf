// Package router switches between the dashboard and watchlist views and owns
// the lifetime of the session behind each one.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"brandpulse/internal/service"
)

type View string

const (
	ViewSearch    View = "search"
	ViewWatchlist View = "watchlist"
)

const (
	PathSearch    = "/"
	PathWatchlist = "/watchlist"
)

// Link is one entry of the navigation bar.
type Link struct {
	Label  string
	Path   string
	View   View
	Active bool
}

var links = []Link{
	{Label: "Dashboard", Path: PathSearch, View: ViewSearch},
	{Label: "Watchlist", Path: PathWatchlist, View: ViewWatchlist},
}

// Router is a two-state view selector. Entering a view discards the
// session of the view being left and builds a fresh one; entering the
// watchlist also loads it.
type Router struct {
	gateway  service.Gateway
	notifier service.Notifier
	logger   *slog.Logger

	mu        sync.Mutex
	view      View
	search    *service.SearchSession
	watchlist *service.WatchlistSession
}

// New starts on the search view.
func New(gateway service.Gateway, notifier service.Notifier, logger *slog.Logger) *Router {
	r := &Router{
		gateway:  gateway,
		notifier: notifier,
		logger:   logger.With("component", "router"),
		view:     ViewSearch,
	}
	r.search = service.NewSearchSession(gateway, notifier, logger)
	return r
}

// Navigate activates the view mounted at path. Navigating to the active
// view remounts it, as following a link does.
func (r *Router) Navigate(ctx context.Context, path string) (View, error) {
	var target View
	switch path {
	case PathSearch, "":
		target = ViewSearch
	case PathWatchlist:
		target = ViewWatchlist
	default:
		return r.Active(), fmt.Errorf("unknown path %q", path)
	}

	r.mu.Lock()
	from := r.view
	r.view = target
	var wl *service.WatchlistSession
	switch target {
	case ViewSearch:
		r.search = service.NewSearchSession(r.gateway, r.notifier, r.logger)
		r.watchlist = nil
	case ViewWatchlist:
		wl = service.NewWatchlistSession(r.gateway, r.notifier, r.logger)
		r.watchlist = wl
		r.search = nil
	}
	r.mu.Unlock()

	r.logger.Debug("navigated", "from", from, "to", target)

	if wl != nil {
		wl.Load(ctx)
	}

	return target, nil
}

func (r *Router) Active() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// Search returns the dashboard session, or nil when the watchlist is shown.
func (r *Router) Search() *service.SearchSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.search
}

// Watchlist returns the watchlist session, or nil when the dashboard is shown.
func (r *Router) Watchlist() *service.WatchlistSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.watchlist
}

// Links returns the navigation bar with the active entry flagged.
func (r *Router) Links() []Link {
	active := r.Active()
	out := make([]Link, len(links))
	for i, l := range links {
		l.Active = l.View == active
		out[i] = l
	}
	return out
}
