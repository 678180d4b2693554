package layout

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renderPage renders Page with body as its children
func renderPage(t *testing.T, data PageData, body templ.Component) *goquery.Document {
	t.Helper()
	var sb strings.Builder
	ctx := templ.WithChildren(context.Background(), body)
	require.NoError(t, Page(data).Render(ctx, &sb))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sb.String()))
	require.NoError(t, err)
	return doc
}

func TestPageRendersChildrenInsideMain(t *testing.T) {
	doc := renderPage(t, PageData{Title: "Studio"}, Row("Seed", "abc"))

	assert.Equal(t, "Studio | MetaLoot Registry", doc.Find("title").Text())
	assert.Equal(t, "Seed", doc.Find("main dt").Text())
	assert.Equal(t, "abc", doc.Find("main dd.mono").Text())
	assert.Equal(t, 0, doc.Find(".flash").Length())
}

func TestFlashClassFollowsType(t *testing.T) {
	tests := []struct {
		kind  string
		class string
	}{
		{"error", "flash-error"},
		{"success", "flash-success"},
		{"info", "flash-info"},
		{"bogus", "flash-info"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			doc := renderPage(t, PageData{Title: "Home", Flash: &FlashMessage{Type: tt.kind, Message: "<i>saved</i>"}}, templ.NopComponent)

			flash := doc.Find(".flash")
			require.Equal(t, 1, flash.Length())
			assert.True(t, flash.HasClass(tt.class))
			assert.Equal(t, "<i>saved</i>", flash.Text())
		})
	}
}
