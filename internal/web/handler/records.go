package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/mux"

	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/services/custody"
	"github.com/metaloot/registry/internal/services/player"
	"github.com/metaloot/registry/internal/services/studio"
	"github.com/metaloot/registry/internal/web/middleware"
	"github.com/metaloot/registry/internal/web/templates/layout"
	"github.com/metaloot/registry/internal/web/templates/pages"
)

// RecordHandler renders studio and player pages
type RecordHandler struct {
	studioService  *studio.Service
	playerService  *player.Service
	custodyService *custody.Service
	logger         *slog.Logger
}

// NewRecordHandler creates a new RecordHandler
func NewRecordHandler(studioService *studio.Service, playerService *player.Service, custodyService *custody.Service, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{
		studioService:  studioService,
		playerService:  playerService,
		custodyService: custodyService,
		logger:         logger,
	}
}

// Studio renders GET /studios/{seed}
func (h *RecordHandler) Studio(w http.ResponseWriter, r *http.Request) {
	seed, ok := h.seed(w, r)
	if !ok {
		return
	}

	record, addr, err := h.studioService.Get(r.Context(), seed)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	nfts := make([]string, len(record.NFTCollection))
	for i, k := range record.NFTCollection {
		nfts[i] = k.String()
	}

	data := pages.StudioData{
		PageData:      h.pageData(r, record.Name),
		Seed:          seed.String(),
		Address:       addr.String(),
		Name:          record.Name,
		Symbol:        record.Symbol,
		URI:           record.URI,
		Authority:     record.Authority.String(),
		NativeToken:   record.NativeToken.String(),
		NFTCollection: nfts,
	}
	data.Custody, err = h.custody(r, seed, h.custodyService.StudioBalance)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render(w, r, http.StatusOK, pages.Studio(data))
}

// Player renders GET /players/{seed}
func (h *RecordHandler) Player(w http.ResponseWriter, r *http.Request) {
	seed, ok := h.seed(w, r)
	if !ok {
		return
	}

	record, addr, err := h.playerService.Get(r.Context(), seed)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := pages.PlayerData{
		PageData:  h.pageData(r, record.Username),
		Seed:      seed.String(),
		Address:   addr.String(),
		Username:  record.Username,
		URI:       record.URI,
		Authority: record.Authority.String(),
		CreatedAt: record.CreatedTime(),
	}
	data.Custody, err = h.custody(r, seed, h.custodyService.Balance)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render(w, r, http.StatusOK, pages.Player(data))
}

type balanceFunc func(ctx context.Context, mint, seed solana.PublicKey) (uint64, solana.PublicKey, error)

// custody reads the balance for the ?mint= query, if one was given
func (h *RecordHandler) custody(r *http.Request, seed solana.PublicKey, balance balanceFunc) (*pages.Custody, error) {
	raw := r.URL.Query().Get("mint")
	if raw == "" {
		return nil, nil
	}
	mint, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return nil, model.ErrInvalidField
	}

	amount, addr, err := balance(r.Context(), mint, seed)
	if errors.Is(err, model.ErrCustodyNotFound) {
		return &pages.Custody{Mint: mint.String(), Missing: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &pages.Custody{Mint: mint.String(), Address: addr.String(), Amount: amount}, nil
}

func (h *RecordHandler) seed(w http.ResponseWriter, r *http.Request) (solana.PublicKey, bool) {
	seed, err := solana.PublicKeyFromBase58(mux.Vars(r)["seed"])
	if err != nil {
		h.renderError(w, r, model.ErrInvalidField)
		return solana.PublicKey{}, false
	}
	return seed, true
}

func (h *RecordHandler) pageData(r *http.Request, title string) layout.PageData {
	return layout.PageData{
		Title: title,
		Flash: middleware.GetFlash(r.Context()),
	}
}

func (h *RecordHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := http.StatusInternalServerError, "Something went wrong. Please try again later."
	switch {
	case errors.Is(err, model.ErrRecordNotFound):
		status, message = http.StatusNotFound, "No record exists for this seed."
	case errors.Is(err, model.ErrInvalidField):
		status, message = http.StatusBadRequest, "Keys must be base58 public keys."
	default:
		h.logger.Error("render record", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	}

	render(w, r, status, pages.Error(pages.ErrorData{
		PageData: layout.PageData{Title: http.StatusText(status)},
		Status:   status,
		Message:  message,
	}))
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = c.Render(r.Context(), w)
}
