package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gaolinyi828/mahjong-pro/internal/cache"
	"github.com/gaolinyi828/mahjong-pro/internal/ledger"
	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

type commitRoundRequest struct {
	SessionID string                    `json:"sessionId"`
	Scores    [models.NumSeats]string   `json:"scores"`
	Tags      [models.NumSeats][]string `json:"tags"`
	Confirm   bool                      `json:"confirm"`
}

// CommitRoundHandler validates and appends one scored hand. A non-zero-sum
// round comes back 409 with needsConfirm set; the client re-submits with
// confirm once the user has acknowledged the imbalance.
func CommitRoundHandler(s *ClubServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req commitRoundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		sessionID, err := models.ParseSessionID(req.SessionID)
		if err != nil {
			http.Error(w, "invalid session id", http.StatusBadRequest)
			return
		}

		var tags [models.NumSeats]models.TagSet
		for seat, labels := range req.Tags {
			ts := models.TagSet{}
			for _, label := range labels {
				ts = ts.Add(models.Tag(label))
			}
			tags[seat] = ts
		}

		validated := ledger.ValidateRound(req.Scores, tags)
		round, err := s.Ledger.CommitRound(r.Context(), sessionID, validated, req.Confirm)
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		s.QueueRoundEvent(r.Context(), cache.RoundEventRecord{
			RoundID:   round.ID,
			SessionID: round.SessionID,
			Scores:    round.Scores,
			Tags:      round.Record().Tags,
			Timestamp: round.Timestamp.UnixMilli(),
		})
		s.changed(r.Context(), "rounds")
		writeJSON(w, http.StatusCreated, round)
	}
}

type deleteRoundRequest struct {
	RoundID string `json:"roundId"`
}

// DeleteRoundHandler removes one committed round; totals recompute without
// it on the next read.
func DeleteRoundHandler(s *ClubServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deleteRoundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		id, err := models.ParseRoundID(req.RoundID)
		if err != nil {
			http.Error(w, "invalid round id", http.StatusBadRequest)
			return
		}

		if err := s.Ledger.DeleteRound(r.Context(), id); err != nil {
			s.Logger.Errorf("delete round %s: %v", id, err)
			http.Error(w, "error deleting round", http.StatusInternalServerError)
			return
		}

		s.changed(r.Context(), "rounds")
		w.WriteHeader(http.StatusOK)
	}
}
