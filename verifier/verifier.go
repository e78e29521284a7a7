package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/xy-planning-network/gate"
	"github.com/xy-planning-network/gate/logger"
)

const (
	MsgExpired    = "Token expired"
	MsgInvalid    = "Invalid token"
	MsgNoToken    = "No token provided"
	MsgNotPremium = "User is not premium"
	MsgServer     = "Server error"
)

// Claims are the JWT claims issued to a Telegram user.
type Claims struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
	IsPremium  bool   `json:"is_premium"`
	jwt.RegisteredClaims
}

// A UserFinder looks up the current state of a user.
//
// FindUser returns an error wrapping gate.ErrNotExist when there is no such user.
type UserFinder interface {
	FindUser(ctx context.Context, telegramID int64) (*gate.User, error)
}

// Handler serves the verification endpoints.
type Handler struct {
	key    []byte
	log    logger.Logger
	parser *jwt.Parser
	users  UserFinder
}

// NewHandler constructs a Handler validating HS256 tokens signed with key.
func NewHandler(key []byte, users UserFinder, l logger.Logger) (*Handler, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: no signing key", gate.ErrBadConfig)
	}

	if users == nil {
		return nil, fmt.Errorf("%w: no UserFinder", gate.ErrBadConfig)
	}

	if l == nil {
		l = logger.New(nil)
	}

	return &Handler{
		key:    key,
		log:    l,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
		users:  users,
	}, nil
}

type verifyResponse struct {
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
	User    *gate.User `json:"user,omitempty"`
}

// VerifyJWT reports whether the bearer token on r belongs to a premium user.
func (h *Handler) VerifyJWT(w http.ResponseWriter, r *http.Request) {
	raw, ok := bearer(r.Header)
	if !ok {
		h.writeJSON(w, r, http.StatusUnauthorized, verifyResponse{Error: MsgNoToken})
		return
	}

	claims := new(Claims)
	_, err := h.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return h.key, nil })
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		h.writeJSON(w, r, http.StatusUnauthorized, verifyResponse{Error: MsgExpired})
		return
	case err != nil:
		h.writeJSON(w, r, http.StatusUnauthorized, verifyResponse{Error: MsgInvalid})
		return
	}

	if claims.TelegramID == 0 {
		h.log.Error("JWT carries no telegram_id", &logger.LogContext{Request: r})
		h.writeJSON(w, r, http.StatusInternalServerError, verifyResponse{Error: MsgServer})
		return
	}

	u, err := h.users.FindUser(r.Context(), claims.TelegramID)
	switch {
	case errors.Is(err, gate.ErrNotExist):
		h.writeJSON(w, r, http.StatusForbidden, verifyResponse{Error: MsgNotPremium})
		return
	case err != nil:
		h.log.Error("failed verifying JWT", &logger.LogContext{Error: err, Request: r})
		h.writeJSON(w, r, http.StatusInternalServerError, verifyResponse{Error: MsgServer})
		return
	case !u.IsPremium:
		h.writeJSON(w, r, http.StatusForbidden, verifyResponse{Error: MsgNotPremium})
		return
	}

	h.writeJSON(w, r, http.StatusOK, verifyResponse{Success: true, User: u})
}

// Health reports the server is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// bearer pulls the token out of an "Authorization: Bearer <token>" header.
func bearer(header http.Header) (string, bool) {
	v := header.Get("Authorization")
	tok, ok := strings.CutPrefix(v, "Bearer ")
	if !ok || tok == "" {
		return "", false
	}

	return tok, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed writing response", &logger.LogContext{Error: err, Request: r})
	}
}
