package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/saveagri/saveagri-backend/internal/auth"
	"github.com/saveagri/saveagri-backend/internal/models"
	"github.com/saveagri/saveagri-backend/internal/store"
	"github.com/saveagri/saveagri-backend/pkg/clientip"
	"github.com/saveagri/saveagri-backend/pkg/utils"
)

const (
	maxUsernameLength = 50
	maxPasswordLength = 100
)

// genericLoginError is the single message for every credential failure.
// It never reveals whether the username or the password was wrong.
const genericLoginError = "invalid username or password"

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
}

// UserHandler owns registration and login.
type UserHandler struct {
	users    store.UserStore
	tokens   *auth.TokenManager
	throttle *auth.LoginThrottle
}

func NewUserHandler(users store.UserStore, tokens *auth.TokenManager, throttle *auth.LoginThrottle) *UserHandler {
	return &UserHandler{users: users, tokens: tokens, throttle: throttle}
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if !utils.ValidateUsername(req.Username) {
		writeError(w, http.StatusBadRequest, "username must be at least 3 characters long")
		return
	}
	if check := utils.ValidatePassword(req.Password); !check.IsValid {
		writeError(w, http.StatusBadRequest, check.Message)
		return
	}
	if !utils.ValidateEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	usernameTaken, emailTaken, err := h.users.Conflicts(r.Context(), req.Username, req.Email)
	if err != nil {
		writeServerError(w, "check user conflicts", err)
		return
	}
	if usernameTaken || emailTaken {
		writeError(w, http.StatusConflict, conflictMessage(usernameTaken, emailTaken))
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		writeServerError(w, "hash password", err)
		return
	}

	user, err := h.users.Create(r.Context(), req.Username, req.Email, passwordHash)
	if err != nil {
		// The unique constraints are the authority under concurrent
		// duplicate registrations; the pre-check above only names fields.
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			writeError(w, http.StatusConflict, "username already in use")
		case errors.Is(err, store.ErrDuplicateEmail):
			writeError(w, http.StatusConflict, "email already in use")
		case errors.Is(err, store.ErrDuplicate):
			writeError(w, http.StatusConflict, "user already exists")
		default:
			writeServerError(w, "create user", err)
		}
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		writeServerError(w, "issue token", err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{User: user, Token: token})
}

// Login handles POST /users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Shape checks happen before the throttle or the store are touched.
	if req.Username == "" || req.Password == "" ||
		len(req.Username) > maxUsernameLength || len(req.Password) > maxPasswordLength {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Every attempt counts, and once blocked the credentials are never
	// checked, valid or not.
	if h.throttle.Attempt(clientip.RealClientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "too many login attempts, please try again in 15 minutes")
		return
	}

	user, err := h.users.FindByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, genericLoginError)
			return
		}
		writeServerError(w, "find user", err)
		return
	}

	if !utils.VerifyPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, genericLoginError)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		writeServerError(w, "issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, UserID: user.ID})
}

func conflictMessage(usernameTaken, emailTaken bool) string {
	switch {
	case usernameTaken && emailTaken:
		return "username and email already in use"
	case usernameTaken:
		return "username already in use"
	default:
		return "email already in use"
	}
}
