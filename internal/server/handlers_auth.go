package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bobmcallan/premia/internal/common"
)

// tokenIssuer is the iss claim of every token this server signs.
const tokenIssuer = "premia"

// signJWT creates an HS256 token for the dashboard user.
func signJWT(username string, config *common.AuthConfig, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"jti": uuid.New().String(),
		"sub": username,
		"iss": tokenIssuer,
		"iat": now.Unix(),
		"exp": now.Add(config.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// validateJWT parses and validates a JWT token, returning the claims.
func validateJWT(tokenString string, secret []byte) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return token, claims, nil
}

// handleAuthLogin handles POST /api/auth/login.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	auth := &s.app.Config.Auth
	if !auth.Enabled() {
		WriteError(w, http.StatusNotFound, "login is not enabled")
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Username), []byte(auth.Username)) != 1 {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	passwordBytes := []byte(req.Password)
	if len(passwordBytes) > 72 {
		passwordBytes = passwordBytes[:72]
	}
	if err := bcrypt.CompareHashAndPassword([]byte(auth.PasswordHash), passwordBytes); err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := signJWT(auth.Username, auth, time.Now())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign JWT for login")
		WriteError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	s.logger.Info().Str("username", auth.Username).Msg("Dashboard login")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data": map[string]interface{}{
			"token":      token,
			"expires_in": int(auth.GetTokenExpiry().Seconds()),
			"user": map[string]interface{}{
				"username": auth.Username,
			},
		},
	})
}
