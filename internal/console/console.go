// Package console is the interactive terminal front end. Each input line is
// one user event: a navigation, a key press or a button click.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"brandpulse/internal/domain"
	"brandpulse/internal/notify"
	"brandpulse/internal/router"
	"brandpulse/internal/service"
)

const prompt = "> "

const helpText = `Commands:
  search [keyword]      set the keyword (optional) and press Enter
  key <name>            send a key press to the search field
  save <n>              save article n of the results to the watchlist
  dashboard | watchlist switch view
  reload                reload the watchlist
  remove <n>            remove article n from the watchlist
  notifications         list active notifications
  dismiss <n|all>       dismiss notification n, or all of them
  analyze <headline>    classify a single headline
  status                check the backend
  help                  show this help
  quit                  exit
`

// Probe exposes the backend calls that do not belong to a session.
type Probe interface {
	Ping(ctx context.Context) (string, error)
	AnalyzeSentiment(ctx context.Context, headline string) (domain.Sentiment, error)
}

type Console struct {
	router   *router.Router
	emitter  *notify.Emitter
	probe    Probe
	renderer *Renderer
	in       io.Reader
	logger   *slog.Logger
}

func New(r *router.Router, emitter *notify.Emitter, probe Probe, renderer *Renderer, in io.Reader, logger *slog.Logger) *Console {
	return &Console{
		router:   r,
		emitter:  emitter,
		probe:    probe,
		renderer: renderer,
		in:       in,
		logger:   logger.With("component", "console"),
	}
}

var errQuit = errors.New("quit")

// Run reads commands until EOF, quit, or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	c.renderer.Nav(c.router.Links())
	c.render()

	scanner := bufio.NewScanner(c.in)
	for {
		c.renderer.write(prompt)

		if !scanner.Scan() {
			c.renderer.write("\n")
			return scanner.Err()
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if err := c.Exec(ctx, scanner.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			c.renderer.printf("error: %v\n", err)
		}
	}
}

// Exec runs a single command line.
func (c *Console) Exec(ctx context.Context, line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "quit", "exit":
		return errQuit
	case "help", "?":
		c.renderer.write(helpText)
	case "dashboard", "/":
		return c.navigate(ctx, router.PathSearch)
	case "watchlist":
		return c.navigate(ctx, router.PathWatchlist)
	case "search":
		return c.search(ctx, arg)
	case "key":
		return c.key(ctx, arg)
	case "save":
		return c.save(ctx, arg)
	case "reload":
		return c.reload(ctx)
	case "remove":
		return c.remove(ctx, arg)
	case "notifications":
		c.renderer.Notifications(c.emitter.Active())
	case "dismiss":
		return c.dismiss(arg)
	case "analyze":
		return c.analyze(ctx, arg)
	case "status":
		return c.status(ctx)
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
	return nil
}

func (c *Console) navigate(ctx context.Context, path string) error {
	if _, err := c.router.Navigate(ctx, path); err != nil {
		return err
	}
	c.renderer.Nav(c.router.Links())
	c.render()
	return nil
}

func (c *Console) render() {
	switch c.router.Active() {
	case router.ViewSearch:
		if s := c.router.Search(); s != nil {
			c.renderer.Dashboard(s.State())
		}
	case router.ViewWatchlist:
		if w := c.router.Watchlist(); w != nil {
			c.renderer.Watchlist(w)
		}
	}
}

func (c *Console) search(ctx context.Context, keyword string) error {
	s := c.router.Search()
	if s == nil {
		return errors.New("search is only available on the dashboard")
	}
	if keyword != "" {
		s.SetKeyword(keyword)
	}
	s.HandleKey(ctx, service.KeyEnter)
	c.render()
	return nil
}

func (c *Console) key(ctx context.Context, name string) error {
	s := c.router.Search()
	if s == nil {
		return errors.New("no input field on this view")
	}
	s.HandleKey(ctx, name)
	c.render()
	return nil
}

func (c *Console) save(ctx context.Context, arg string) error {
	s := c.router.Search()
	if s == nil {
		return errors.New("save is only available on the dashboard")
	}

	articles := s.Articles()
	i, err := index(arg, len(articles))
	if err != nil {
		return err
	}

	article := articles[i]
	if s.IsSaved(article.ID) {
		return fmt.Errorf("article %d is already saved", i+1)
	}
	s.SaveArticle(ctx, article)
	return nil
}

func (c *Console) reload(ctx context.Context) error {
	w := c.router.Watchlist()
	if w == nil {
		return errors.New("reload is only available on the watchlist")
	}
	w.Load(ctx)
	c.render()
	return nil
}

func (c *Console) remove(ctx context.Context, arg string) error {
	w := c.router.Watchlist()
	if w == nil {
		return errors.New("remove is only available on the watchlist")
	}

	articles := w.Articles()
	i, err := index(arg, len(articles))
	if err != nil {
		return err
	}

	w.Remove(ctx, articles[i].ID)
	c.render()
	return nil
}

func (c *Console) dismiss(arg string) error {
	if arg == "all" {
		c.renderer.printf("dismissed %d\n", c.emitter.DismissAll())
		return nil
	}

	active := c.emitter.Active()
	i, err := index(arg, len(active))
	if err != nil {
		return err
	}
	c.emitter.Dismiss(active[i].ID)
	return nil
}

func (c *Console) analyze(ctx context.Context, headline string) error {
	if headline == "" {
		return errors.New("usage: analyze <headline>")
	}

	sentiment, err := c.probe.AnalyzeSentiment(ctx, headline)
	if err != nil {
		c.logger.Error("analyze failed", "error", err)
		c.emitter.Notify("Analysis Failed", "We couldn't analyze this headline. Please try again.", domain.SeverityError)
		return nil
	}

	c.renderer.printf("[%s] %s\n", strings.ToUpper(string(sentiment)), headline)
	return nil
}

func (c *Console) status(ctx context.Context) error {
	banner, err := c.probe.Ping(ctx)
	if err != nil {
		c.logger.Error("ping failed", "error", err)
		c.emitter.Notify("Connection Error", "The BrandPulse API is unreachable. Please check your connection.", domain.SeverityError)
		return nil
	}

	c.renderer.printf("%s: online\n", banner)
	return nil
}

// index parses a 1-based position into a slice of length n.
func index(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("expected a number, got %q", arg)
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("no item %d (have %d)", i, n)
	}
	return i - 1, nil
}
