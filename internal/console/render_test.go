package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"brandpulse/internal/domain"
	"brandpulse/internal/service"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "Shares rose  today", want: "Shares rose today"},
		{name: "html", in: `<a href="x">Tesla</a>&nbsp;<font color="#6f6f6f">Reuters</font>`, want: "Tesla Reuters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plainText(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc…", truncate("abcdef", 3))
	assert.Equal(t, "äöü…", truncate("äöüß", 3))
}

func TestRenderer_DashboardLoading(t *testing.T) {
	out := &bytes.Buffer{}
	NewRenderer(out).Dashboard(service.SearchState{Keyword: "Tesla", Loading: true})

	assert.Contains(t, out.String(), "Analyzing...")
	assert.NotContains(t, out.String(), "Start Monitoring")
}

func TestRenderer_DashboardSavedMarker(t *testing.T) {
	out := &bytes.Buffer{}
	state := service.SearchState{
		Articles: []domain.Article{
			{ID: "a1", Title: "Saved one", Published: "Mon, 02 Jan 2006 15:04:05 GMT"},
			{ID: "a2", Title: "Other one"},
		},
		SavedIDs: map[string]bool{"a1": true},
	}

	NewRenderer(out).Dashboard(state)

	lines := strings.Split(out.String(), "\n")
	assert.Contains(t, out.String(), "Saved one  (saved)")
	assert.Contains(t, out.String(), "Jan 2, 2006")
	for _, l := range lines {
		if strings.Contains(l, "Other one") {
			assert.NotContains(t, l, "(saved)")
		}
	}
}

func TestRenderer_Deliver(t *testing.T) {
	out := &bytes.Buffer{}
	NewRenderer(out).Deliver(domain.Notification{Title: "Article Saved", Message: "done", Severity: domain.SeveritySuccess})

	assert.Equal(t, "✔ Article Saved: done\n", out.String())
}
