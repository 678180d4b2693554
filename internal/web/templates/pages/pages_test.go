package pages

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaloot/registry/internal/web/templates/layout"
)

func render(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sb.String()))
	require.NoError(t, err)
	return doc
}

func TestPlayerShowsCustodyBalance(t *testing.T) {
	doc := render(t, Player(PlayerData{
		PageData:  layout.PageData{Title: "alice"},
		Username:  "alice",
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Custody:   &Custody{Mint: "mint", Address: "cust", Amount: 42},
	}))

	assert.Equal(t, "alice", doc.Find("h1.record-name").Text())
	assert.Contains(t, doc.Find("#player").Text(), "2024-01-01T12:00:00Z")
	assert.Equal(t, "42", doc.Find("#custody .balance").Text())
	assert.Equal(t, 0, doc.Find("#custody .empty").Length())
}

func TestStudioWithMissingCustody(t *testing.T) {
	doc := render(t, Studio(StudioData{
		PageData:      layout.PageData{Title: "Pixel Forge"},
		Name:          "Pixel Forge",
		Symbol:        "PXF",
		NFTCollection: []string{"a", "b"},
		Custody:       &Custody{Mint: "mint", Missing: true},
	}))

	assert.Equal(t, "PXF", doc.Find("h1.record-name small").Text())
	assert.Contains(t, doc.Find("#studio").Text(), "a, b")
	assert.Contains(t, doc.Find("#custody .empty").Text(), "No custody account for mint mint")
}

func TestRecordWithoutMintHasNoCustodySection(t *testing.T) {
	doc := render(t, Studio(StudioData{Name: "Pixel Forge"}))
	assert.Equal(t, 0, doc.Find("#custody").Length())
}

func TestErrorPage(t *testing.T) {
	doc := render(t, Error(ErrorData{PageData: layout.PageData{Title: "Not Found"}, Status: 404, Message: "<gone>"}))

	assert.Equal(t, "404", doc.Find("h1.error").Text())
	assert.Equal(t, "<gone>", doc.Find(".error-message").Text())
	assert.Equal(t, "Not Found | MetaLoot Registry", doc.Find("title").Text())
}
