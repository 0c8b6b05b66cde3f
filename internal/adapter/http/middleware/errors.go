package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iho/fxledger/internal/adapter/http/dto"
)

// Codes produced by middleware rather than by the ledger.
const (
	CodeRateLimited           = "RATE_LIMITED"
	CodeIdempotencyInProgress = "IDEMPOTENCY_KEY_IN_PROGRESS"
	CodeIdempotencyFailure    = "IDEMPOTENCY_FAILURE"
)

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{Error: code, Message: message})
}
