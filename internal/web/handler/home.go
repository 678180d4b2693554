package handler

import (
	"net/http"
	"net/url"

	"github.com/gagliardetto/solana-go"

	"github.com/metaloot/registry/internal/web/middleware"
	"github.com/metaloot/registry/internal/web/templates/layout"
	"github.com/metaloot/registry/internal/web/templates/pages"
)

// HomeHandler handles the search page
type HomeHandler struct{}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Home renders the search page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := pages.HomeData{
		PageData: layout.PageData{
			Title: "Search",
			Flash: middleware.GetFlash(r.Context()),
		},
	}
	render(w, r, http.StatusOK, pages.Home(data))
}

// Search redirects a search form submission to the record page
func (h *HomeHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	seed, err := solana.PublicKeyFromBase58(q.Get("seed"))
	if err != nil {
		middleware.SetFlash(w, middleware.FlashError, "Seed must be a base58 public key")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	var path string
	switch q.Get("kind") {
	case "studio":
		path = "/studios/" + seed.String()
	case "player", "":
		path = "/players/" + seed.String()
	default:
		middleware.SetFlash(w, middleware.FlashError, "Unknown record kind")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if mint := q.Get("mint"); mint != "" {
		path += "?" + url.Values{"mint": {mint}}.Encode()
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
