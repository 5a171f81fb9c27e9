package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gaolinyi828/mahjong-pro/internal/ledger"
	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

type openSessionRequest struct {
	PlayerIDs []string `json:"playerIds"`
}

// OpenSessionHandler seats a roster of four and opens the table.
func OpenSessionHandler(s *ClubServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req openSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		ids := make([]models.PlayerID, 0, len(req.PlayerIDs))
		for _, raw := range req.PlayerIDs {
			id, err := models.ParsePlayerID(raw)
			if err != nil {
				writeLedgerError(w, ledger.ErrInvalidRoster)
				return
			}
			ids = append(ids, id)
		}

		// New writes validate strictly: every seat must resolve to a known
		// roster member, even though old data is read leniently.
		for _, id := range ids {
			p, err := s.Store.GetPlayer(r.Context(), id)
			if err != nil {
				s.Logger.Errorf("roster lookup %s: %v", id, err)
				http.Error(w, "error resolving roster", http.StatusInternalServerError)
				return
			}
			if p == nil {
				http.Error(w, "unknown player "+id.String(), http.StatusBadRequest)
				return
			}
		}

		session, err := s.Ledger.Open(r.Context(), ids)
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		s.changed(r.Context(), "sessions")
		writeJSON(w, http.StatusCreated, session)
	}
}

// CloseSessionHandler ends the open session. Terminal: the session's totals
// freeze into historical fact.
func CloseSessionHandler(s *ClubServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		closed, err := s.Ledger.Close(r.Context())
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		s.changed(r.Context(), "sessions")
		writeJSON(w, http.StatusOK, closed)
	}
}

type deleteSessionRequest struct {
	SessionID string `json:"sessionId"`
}

// DeleteSessionHandler removes a session and all of its rounds in one
// atomic batch.
func DeleteSessionHandler(s *ClubServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deleteSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		id, err := models.ParseSessionID(req.SessionID)
		if err != nil {
			http.Error(w, "invalid session id", http.StatusBadRequest)
			return
		}

		if err := s.Ledger.DeleteSession(r.Context(), id); err != nil {
			s.Logger.Errorf("delete session %s: %v", id, err)
			http.Error(w, "error deleting session", http.StatusInternalServerError)
			return
		}

		s.changed(r.Context(), "sessions", "rounds")
		w.WriteHeader(http.StatusOK)
	}
}

// ListSessionsHandler returns all sessions, newest first.
func ListSessionsHandler(s *ClubServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := s.Store.ListSessions(r.Context())
		if err != nil {
			s.Logger.Errorf("list sessions: %v", err)
			http.Error(w, "error listing sessions", http.StatusInternalServerError)
			return
		}
		if sessions == nil {
			sessions = []models.Session{}
		}
		writeJSON(w, http.StatusOK, sessions)
	}
}

type activeSessionResponse struct {
	Session *models.Session      `json:"session"`
	Rounds  []models.RoundRecord `json:"rounds"`
	Totals  [models.NumSeats]int `json:"totals"`
}

// ActiveSessionHandler returns the open session with its rounds (newest
// first) and the running per-seat totals, or an empty body when the table
// is idle.
func ActiveSessionHandler(s *ClubServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.Store.ActiveSession(r.Context())
		if err != nil {
			s.Logger.Errorf("active session: %v", err)
			http.Error(w, "error fetching active session", http.StatusInternalServerError)
			return
		}
		if session == nil {
			writeJSON(w, http.StatusOK, activeSessionResponse{Rounds: []models.RoundRecord{}})
			return
		}

		rounds, err := s.Store.ListSessionRounds(r.Context(), session.ID)
		if err != nil {
			s.Logger.Errorf("session rounds %s: %v", session.ID, err)
			http.Error(w, "error fetching rounds", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, activeSessionResponse{
			Session: session,
			Rounds:  rounds,
			Totals:  ledger.RunningTotals(rounds),
		})
	}
}
