package handler

import (
	"net/http"

	"github.com/metaloot/registry/internal/api/response"
	"github.com/metaloot/registry/internal/services/custody"
	"github.com/metaloot/registry/internal/services/player"
	"github.com/metaloot/registry/internal/services/studio"
)

// RegistryHandler handles studio, player and custody lookups
type RegistryHandler struct {
	studioService  *studio.Service
	playerService  *player.Service
	custodyService *custody.Service
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(studioService *studio.Service, playerService *player.Service, custodyService *custody.Service) *RegistryHandler {
	return &RegistryHandler{
		studioService:  studioService,
		playerService:  playerService,
		custodyService: custodyService,
	}
}

// GetStudio handles GET /api/v1/studios/{seed}
func (h *RegistryHandler) GetStudio(w http.ResponseWriter, r *http.Request) {
	seed, err := pathKey(r, "seed")
	if err != nil {
		WriteError(w, err)
		return
	}

	record, addr, err := h.studioService.Get(r.Context(), seed)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StudioFromModel(record, addr, seed))
}

// GetPlayer handles GET /api/v1/players/{seed}
func (h *RegistryHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	seed, err := pathKey(r, "seed")
	if err != nil {
		WriteError(w, err)
		return
	}

	record, addr, err := h.playerService.Get(r.Context(), seed)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(record, addr, seed))
}

// GetCustody handles GET /api/v1/custody/{mint}/{seed}
func (h *RegistryHandler) GetCustody(w http.ResponseWriter, r *http.Request) {
	h.custody(w, r, h.custodyService.Balance)
}

// GetStudioCustody handles GET /api/v1/studios/{seed}/custody/{mint}
func (h *RegistryHandler) GetStudioCustody(w http.ResponseWriter, r *http.Request) {
	h.custody(w, r, h.custodyService.StudioBalance)
}

func (h *RegistryHandler) custody(w http.ResponseWriter, r *http.Request, balance custodyBalance) {
	mint, err := pathKey(r, "mint")
	if err != nil {
		WriteError(w, err)
		return
	}
	seed, err := pathKey(r, "seed")
	if err != nil {
		WriteError(w, err)
		return
	}

	amount, addr, err := balance(r.Context(), mint, seed)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Custody{
		Address: addr.String(),
		Seed:    seed.String(),
		Mint:    mint.String(),
		Amount:  amount,
	})
}
