package httpapi

import (
	"crypto/subtle"
	"net/http"
	"time"
)

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.c.MasterPassword)) != 1 {
		writeError(w, http.StatusUnauthorized, "wrong password")
		return
	}

	now := time.Now()
	_, token, err := s.ja.Encode(map[string]any{
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(s.c.JWTTTL).Unix(),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "can't issue token")
		return
	}
	writeSuccess(w, map[string]any{
		"token":      token,
		"expires_at": now.Add(s.c.JWTTTL).Unix(),
	})
}
