package handlers

import (
	"errors"
	"net/http"

	"github.com/gaolinyi828/mahjong-pro/internal/ledger"
)

// writeLedgerError maps the ledger's error taxonomy onto HTTP. Structural
// violations surface to the caller; the non-zero-sum warning returns a
// structured body so the client can re-submit with confirmation.
func writeLedgerError(w http.ResponseWriter, err error) {
	var nzs *ledger.NonZeroSumError
	switch {
	case errors.As(err, &nzs):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":        nzs.Error(),
			"sum":          nzs.Sum,
			"needsConfirm": true,
		})
	case errors.Is(err, ledger.ErrInvalidRoster):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrSessionActive):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ledger.ErrSessionClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ledger.ErrNoActiveSession):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
