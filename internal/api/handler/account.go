package handler

import (
	"context"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/mux"

	"github.com/metaloot/registry/internal/address"
	"github.com/metaloot/registry/internal/api/response"
	"github.com/metaloot/registry/internal/services/system"
)

// custodyBalance reads the custody balance of the record under seed
type custodyBalance func(ctx context.Context, mint, seed solana.PublicKey) (uint64, solana.PublicKey, error)

// AccountHandler handles raw account and derivation lookups
type AccountHandler struct {
	systemService *system.Service
	deriver       *address.Deriver
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(systemService *system.Service, deriver *address.Deriver) *AccountHandler {
	return &AccountHandler{
		systemService: systemService,
		deriver:       deriver,
	}
}

// Get handles GET /api/v1/accounts/{address}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	addr, err := pathKey(r, "address")
	if err != nil {
		WriteError(w, err)
		return
	}

	acct, err := h.systemService.Account(r.Context(), addr)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(acct))
}

// Derive handles GET /api/v1/derive/{tag}/{seed}
func (h *AccountHandler) Derive(w http.ResponseWriter, r *http.Request) {
	tag := address.Tag(mux.Vars(r)["tag"])
	switch tag {
	case address.TagRegistry, address.TagPlayer, address.TagToken:
	default:
		WriteError(w, NewInvalidRequestError("tag must be one of registry, player, token"))
		return
	}
	seed, err := pathKey(r, "seed")
	if err != nil {
		WriteError(w, err)
		return
	}

	derived, err := h.deriver.Derive(tag, seed)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DerivedFromModel(tag, seed, h.deriver.ProgramID(), derived))
}
