package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"brandpulse/internal/domain"
	"brandpulse/internal/router"
	"brandpulse/internal/service"
)

const (
	brandName     = "BrandPulse"
	summaryLength = 160
	dateLayout    = "Jan 2, 2006"
)

// Renderer writes views as plain text. Writes are serialized so that
// notifications delivered from other goroutines do not interleave.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

func (r *Renderer) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

func (r *Renderer) write(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	io.WriteString(r.out, s)
}

// Deliver implements notify.Sink.
func (r *Renderer) Deliver(n domain.Notification) {
	r.printf("%s %s: %s\n", n.Severity.Icon(), n.Title, n.Message)
}

func (r *Renderer) Nav(links []router.Link) {
	var b strings.Builder
	b.WriteString(brandName)
	for _, l := range links {
		b.WriteString("  ")
		if l.Active {
			fmt.Fprintf(&b, "[%s]", l.Label)
		} else {
			b.WriteString(l.Label)
		}
	}
	b.WriteString("\n")
	r.write(b.String())
}

func (r *Renderer) Dashboard(state service.SearchState) {
	var b strings.Builder

	if state.Keyword != "" {
		fmt.Fprintf(&b, "Keyword: %s\n", state.Keyword)
	}
	if state.Loading {
		b.WriteString("Analyzing...\n")
	}

	if len(state.Articles) > 0 {
		fmt.Fprintf(&b, "Positive %d | Negative %d | Neutral %d\n",
			state.Stats.Positive, state.Stats.Negative, state.Stats.Neutral)
		for i, a := range state.Articles {
			writeArticle(&b, i+1, a, state.SavedIDs[a.ID], false)
		}
	} else if !state.Loading {
		b.WriteString("Start Monitoring\n  Enter a company name to track media sentiment: search <keyword>\n")
	}

	r.write(b.String())
}

func (r *Renderer) Watchlist(ws *service.WatchlistSession) {
	var b strings.Builder

	articles := ws.Articles()
	fmt.Fprintf(&b, "My Watchlist (%d saved articles)\n", len(articles))

	switch {
	case ws.Loading():
		b.WriteString("Loading...\n")
	case len(articles) == 0:
		b.WriteString("No Saved Articles\n  Articles you save will appear here. Type 'dashboard' to go back.\n")
	default:
		for i, a := range articles {
			writeArticle(&b, i+1, a, false, true)
		}
	}

	r.write(b.String())
}

func (r *Renderer) Notifications(active []domain.Notification) {
	if len(active) == 0 {
		r.write("No active notifications\n")
		return
	}

	var b strings.Builder
	for i, n := range active {
		fmt.Fprintf(&b, "%2d. %s %s: %s\n", i+1, n.Severity.Icon(), n.Title, n.Message)
	}
	r.write(b.String())
}

func writeArticle(b *strings.Builder, index int, a domain.Article, saved, withKeyword bool) {
	marker := ""
	if saved {
		marker = "  (saved)"
	}
	fmt.Fprintf(b, "%2d. [%s] %s%s\n", index, strings.ToUpper(string(a.Sentiment)), a.Title, marker)

	meta := a.Source
	if withKeyword && a.Keyword != "" {
		meta += "  #" + a.Keyword
	} else if date := formatDate(a); date != "" {
		meta += "  " + date
	}
	if meta != "" {
		fmt.Fprintf(b, "    %s\n", meta)
	}

	if summary := plainText(a.Summary); summary != "" {
		fmt.Fprintf(b, "    %s\n", truncate(summary, summaryLength))
	}
	if a.Link != "" {
		fmt.Fprintf(b, "    %s\n", a.Link)
	}
}

func formatDate(a domain.Article) string {
	if t, ok := a.PublishedAt(); ok {
		return t.Format(dateLayout)
	}
	return a.Published
}

// plainText flattens the HTML snippet that news feeds put in summaries.
func plainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
