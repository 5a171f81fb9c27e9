package handlers

import (
	"fmt"
	"net/http"

	"github.com/gaolinyi828/mahjong-pro/internal/auth"
)

// EnsureGuest is the anonymous sign-in bootstrap: a visitor without a valid
// token gets a fresh guest identity minted and set as a cookie. There is no
// registration; the token is the whole account.
func EnsureGuest(w http.ResponseWriter, r *http.Request) (auth.Claims, error) {
	token := extractCookieToken(r.Header.Get("Cookie"), "auth_token")
	if token != "" {
		if claims, err := auth.Authenticate(token); err == nil {
			return claims, nil
		}
		// Stale or forged token falls through to a new guest identity.
	}

	memberID, newToken, err := auth.NewGuestToken()
	if err != nil {
		return auth.Claims{}, fmt.Errorf("minting guest token: %w", err)
	}
	setAuthCookie(w, newToken)
	return auth.Claims{MemberID: memberID}, nil
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   auth.TOKEN_EXPIRE_TIME_SEC,
	})
}

// requireAdmin authenticates the request and checks the admin claim.
func requireAdmin(r *http.Request) bool {
	token := extractCookieToken(r.Header.Get("Cookie"), "auth_token")
	if token == "" {
		return false
	}
	claims, err := auth.Authenticate(token)
	return err == nil && claims.Admin
}
