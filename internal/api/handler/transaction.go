package handler

import (
	"encoding/json"
	"net/http"

	"github.com/metaloot/registry/internal/api/response"
	"github.com/metaloot/registry/internal/instruction"
	"github.com/metaloot/registry/internal/processor"
)

// maxTransactionBytes bounds a submitted transaction body
const maxTransactionBytes = 64 << 10

// TransactionHandler handles transaction submission
type TransactionHandler struct {
	processor *processor.Processor
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(processor *processor.Processor) *TransactionHandler {
	return &TransactionHandler{
		processor: processor,
	}
}

// Submit handles POST /api/v1/transactions
func (h *TransactionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var tx instruction.Transaction
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTransactionBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&tx); err != nil {
		WriteError(w, NewInvalidRequestError("invalid transaction body"))
		return
	}

	receipt, err := h.processor.Process(r.Context(), &tx)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, receipt)
}
