package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"doccontrol/pkg/types"
)

type session struct {
	UserID    string
	ExpiresAt time.Time
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (s *Service) sessionMaxAge() time.Duration {
	return time.Duration(s.config.SessionMaxAgeSec) * time.Second
}

func (s *Service) readSession(r *http.Request) (*session, error) {
	cookie, err := r.Cookie(s.config.CookieName)
	if err != nil {
		return nil, err
	}

	var sess session
	if err := s.cookie.Decode(s.config.CookieName, cookie.Value, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	if time.Now().After(sess.ExpiresAt) {
		return nil, errors.New("session expired")
	}

	return &sess, nil
}

func (s *Service) writeSession(w http.ResponseWriter, userID string) error {
	maxAge := s.sessionMaxAge()

	encoded, err := s.cookie.Encode(s.config.CookieName, session{
		UserID:    userID,
		ExpiresAt: time.Now().Add(maxAge),
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   !s.config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
		Path:     "/",
	})

	return nil
}

func (s *Service) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   !s.config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, "invalid form payload")
		return
	}

	var login loginForm
	if err := decoder.Decode(&login, r.Form); err != nil {
		s.badRequest(w, "invalid form payload")
		return
	}

	user, err := s.core.Authenticate(r.Context(), login.Email, login.Password)
	if err != nil {
		if !errors.Is(err, types.ErrInvalidCredentials) {
			s.logger.WithError(err).Error("failed to authenticate user")
		}
		s.writeError(w, err)
		return
	}

	if err := s.writeSession(w, user.ID); err != nil {
		s.logger.WithError(err).Error("failed to write session cookie")
		s.internalServerError(w)
		return
	}

	s.logger.WithField("user_id", user.ID).Info("user logged in")

	s.writeJSON(w, http.StatusOK, user)
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleGetMe(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())

	user, err := s.core.GetUser(r.Context(), actor.UserID)
	if err != nil || user == nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, user)
}
