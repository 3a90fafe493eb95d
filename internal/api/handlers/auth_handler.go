package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/raaf17/assesment-test-imp/internal/auth"
	"github.com/raaf17/assesment-test-imp/internal/services"
)

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	users   services.UserServiceProvider
	events  services.EventServiceProvider
	codec   *auth.Codec
	revoked auth.RevocationList
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, events services.EventServiceProvider, codec *auth.Codec, revoked auth.RevocationList) *AuthHandler {
	return &AuthHandler{users: users, events: events, codec: codec, revoked: revoked}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration and issues the first token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	user, err := h.users.CreateUser(payload.Name, payload.Email, payload.Password, payload.PasswordConfirmation)
	if err != nil {
		respondError(w, r, err)
		return
	}

	token, err := h.codec.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "Registration failed"})
		return
	}

	h.record("user.register", "info", "User registered", user.ID)

	respondData(w, http.StatusCreated, "User registered successfully", map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Login verifies credentials and issues a token. Bad credentials get a
// generic 401 with no further detail.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid request body"})
		return
	}

	user, ok, err := h.users.Authenticate(payload.Email, payload.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !ok {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Invalid credentials"})
		return
	}

	token, err := h.codec.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "Login failed"})
		return
	}

	h.record("user.login", "info", "User logged in", user.ID)

	respondData(w, http.StatusOK, "Login successful", map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Logout revokes the presented token until its natural expiry. The
// token itself stays structurally valid; the revocation list is what
// rejects it afterwards. Logging out twice is a no-op.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Missing auth token"})
		return
	}

	if h.revoked != nil {
		claims, err := h.codec.Validate(session.Token)
		if err == nil {
			if err := h.revoked.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
				log.Error().Err(err).Str("user_id", session.Subject).Msg("Failed to revoke token")
			}
		}
	}

	h.record("user.logout", "info", "User logged out", session.Subject)

	respondData(w, http.StatusOK, "Logged out successfully", nil)
}

// Me retrieves the currently authenticated user from the token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Missing auth token"})
		return
	}

	user, err := h.users.GetUserByID(session.Subject)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, "", user)
}

// Refresh issues a new token for the current subject with a later
// expiry and revokes the superseded one. An expired token never gets
// here; the middleware already rejected it.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Missing auth token"})
		return
	}

	token, err := h.codec.Refresh(session.Token)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if h.revoked != nil {
		if claims, err := h.codec.Validate(session.Token); err == nil {
			if err := h.revoked.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
				log.Error().Err(err).Str("user_id", session.Subject).Msg("Failed to revoke superseded token")
			}
		}
	}

	respondData(w, http.StatusOK, "", map[string]interface{}{"token": token})
}

func (h *AuthHandler) record(eventType, level, message, userID string) {
	if h.events == nil {
		return
	}
	if err := h.events.Record(eventType, level, message, &userID); err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record event")
	}
}
