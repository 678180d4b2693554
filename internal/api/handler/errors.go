package handler

import (
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/mux"

	"github.com/metaloot/registry/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// pathKey parses the base58 key in path variable name
func pathKey(r *http.Request, name string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(mux.Vars(r)[name])
	if err != nil {
		return solana.PublicKey{}, NewInvalidRequestError(name + " is not a valid base58 public key")
	}
	return key, nil
}
