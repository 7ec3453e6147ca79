package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// handleSignup регистрирует пользователя и сразу выдаёт токен.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	user := domain.User{
		ID:    uuid.New().String(),
		Name:  req.Name,
		Email: req.Email,
	}
	if err := s.users.Create(user, hash); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			s.writeError(w, http.StatusConflict, "email is already registered")
			return
		}
		s.logger.WithError(err).Error("failed to create user")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to issue token")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	s.writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: token})
}

// handleSignin проверяет учётные данные и выдаёт токен.
// Неизвестный email и неверный пароль дают одинаковый ответ.
func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, hash, err := s.users.GetByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		s.logger.WithError(err).Error("failed to load user by email")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(req.Password)); err != nil {
		s.writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to issue token")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	s.logger.WithField("user_id", user.ID).Info("user signed in")
	s.writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token})
}

// handleLogout ничего не хранит на сервере: токены без состояния,
// клиент просто забывает свой.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
