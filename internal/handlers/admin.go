package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gaolinyi828/mahjong-pro/internal/auth"
)

type adminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLoginHandler exchanges the club admin password for an admin token.
func AdminLoginHandler(s *ClubServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if !auth.VerifyAdminPassword(req.Password) {
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}

		token, err := auth.CreateToken("admin", true)
		if err != nil {
			s.Logger.Errorf("admin token: %v", err)
			http.Error(w, "failed to create token", http.StatusInternalServerError)
			return
		}
		setAuthCookie(w, token)
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

// ClearDataHandler wipes the whole club: rounds, sessions and players, in
// one transaction. Admin only.
func ClearDataHandler(s *ClubServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(r) {
			http.Error(w, "admin required", http.StatusForbidden)
			return
		}

		if err := s.Store.ClearAll(r.Context()); err != nil {
			s.Logger.Errorf("clear data: %v", err)
			http.Error(w, "error clearing data", http.StatusInternalServerError)
			return
		}

		s.Logger.Warn("all club data cleared by admin")
		s.changed(r.Context(), "players", "sessions", "rounds")
		w.WriteHeader(http.StatusOK)
	}
}
