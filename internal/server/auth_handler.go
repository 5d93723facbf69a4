package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kaldeqca/sex-sim-ai/internal/config"
)

// TokenRequest is the body of POST /auth/token.
type TokenRequest struct {
	ClientID     string `json:"client_id" validate:"required,uuid"`
	ClientSecret string `json:"client_secret" validate:"required"`
}

// TokenResponse is returned when a client authenticates.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthHandler exchanges client credentials for API tokens.
type AuthHandler struct {
	clients    *config.Config
	hasher     *config.SecretHasher
	jwtService *JWTService
	validator  *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(clients *config.Config, hasher *config.SecretHasher, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		clients:    clients,
		hasher:     hasher,
		jwtService: jwtService,
		validator:  validator.New(),
	}
}

// IssueToken handles POST /auth/token.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeError(w, r, &ErrValidation{Field: "body", Message: extractValidationErrors(err)})
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil || !h.clients.VerifyClient(h.hasher, clientID.String(), req.ClientSecret) {
		writeError(w, r, &ErrInvalidCredentials{})
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt.UTC(),
	})
}

// extractValidationErrors flattens validator errors into "field: tag" pairs.
func extractValidationErrors(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+": "+fe.Tag())
	}
	return strings.Join(msgs, ", ")
}
