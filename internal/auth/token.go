// internal/auth/token.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// privateKey and publicKey sign and verify member tokens.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// TOKEN_EXPIRE_TIME_SEC indicates how many seconds until token expiration (0 => never).
	TOKEN_EXPIRE_TIME_SEC int
)

// Claims is the decoded identity carried by a club token. Members are
// anonymous: first contact mints a fresh guest id, and the id only exists
// inside the token. Admin is set on tokens issued through the admin gate.
type Claims struct {
	MemberID string
	Admin    bool
}

// parseTokenExpireTime reads the TOKEN_EXPIRE_TIME env var and sets TOKEN_EXPIRE_TIME_SEC accordingly.
func parseTokenExpireTime() {
	duration := os.Getenv("TOKEN_EXPIRE_TIME")
	if duration == "never" || duration == "0" || duration == "" {
		TOKEN_EXPIRE_TIME_SEC = 0
	} else {
		d, err := time.ParseDuration(duration)
		if err != nil {
			fmt.Printf("failed to parse token expire time: %v\n", err)
			os.Exit(1)
		}
		TOKEN_EXPIRE_TIME_SEC = int(d.Seconds())
	}
}

// Init generates a fresh ed25519 key pair at runtime and sets the token
// expiration. Tokens do not survive a restart; guests just get a new one.
func Init() {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		fmt.Printf("failed to generate ed25519 key pair: %v\n", err)
		os.Exit(1)
	}
	parseTokenExpireTime()
}

// CreateToken signs a token for the given member. Admin tokens additionally
// carry the "adm" claim.
func CreateToken(memberID string, admin bool) (string, error) {
	claims := jwt.MapClaims{
		"sub": memberID,
	}
	if admin {
		claims["adm"] = true
	}
	if TOKEN_EXPIRE_TIME_SEC > 0 {
		claims["exp"] = time.Now().Add(time.Duration(TOKEN_EXPIRE_TIME_SEC) * time.Second).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// NewGuestToken mints an identity for an anonymous first-time visitor and
// returns the member id along with its signed token.
func NewGuestToken() (memberID, token string, err error) {
	memberID = uuid.NewString()
	token, err = CreateToken(memberID, false)
	return memberID, token, err
}

// Authenticate verifies a token string and returns its claims.
func Authenticate(tokenString string) (Claims, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return Claims{}, fmt.Errorf("invalid token")
	}

	mapClaims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("invalid jwt claims")
	}
	sub, ok := mapClaims["sub"].(string)
	if !ok {
		return Claims{}, fmt.Errorf("missing sub in jwt")
	}

	admin, _ := mapClaims["adm"].(bool)
	return Claims{MemberID: sub, Admin: admin}, nil
}
