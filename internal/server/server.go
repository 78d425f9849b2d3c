package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"doccontrol/internal/core"
	"doccontrol/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger *logrus.Logger
	config *types.Config
	core   *core.Service
	cookie *securecookie.SecureCookie

	handler http.Handler
	server  *http.Server
}

func New(config *types.Config, logger *logrus.Logger, register *core.Service) (*Service, error) {
	mux := flow.New()

	cookie, err := newSecureCookie(config, logger)
	if err != nil {
		return nil, err
	}

	var handler http.Handler = mux
	if len(config.CORSAllowedOrigins) > 0 {
		handler = withCORS(config.CORSAllowedOrigins, mux)
	}

	s := &Service{
		logger:  logger,
		config:  config,
		core:    register,
		cookie:  cookie,
		handler: handler,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           handler,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

// newSecureCookie decodes the configured keys. Missing keys are generated,
// which invalidates every session on restart.
func newSecureCookie(config *types.Config, logger *logrus.Logger) (*securecookie.SecureCookie, error) {
	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie block key: %w", err)
	}

	if len(hashKey) == 0 {
		logger.Warn("COOKIE_HASH_KEY not set, generating an ephemeral key")
		hashKey = securecookie.GenerateRandomKey(64)
	}
	if len(blockKey) == 0 {
		logger.Warn("COOKIE_BLOCK_KEY not set, generating an ephemeral key")
		blockKey = securecookie.GenerateRandomKey(32)
	}

	cookie := securecookie.New(hashKey, blockKey)
	cookie.MaxAge(config.SessionMaxAgeSec)

	return cookie, nil
}

// withCORS lets browser clients on allowedOrigins call the API with the
// session cookie.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return middleware.Handler(h)
}

func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handlePostLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/me", s.handleGetMe, http.MethodGet)

		r.HandleFunc("/organizations", s.handleGetOrganizations, http.MethodGet)
		r.HandleFunc("/organizations", s.handlePostOrganization, http.MethodPost)
		r.HandleFunc("/organizations/recipients", s.handleGetRecipients, http.MethodGet)
		r.HandleFunc("/organizations/:orgID/users", s.handleGetUsers, http.MethodGet)
		r.HandleFunc("/organizations/:orgID/users", s.handlePostUser, http.MethodPost)
		r.HandleFunc("/organizations/:orgID/projects", s.handleGetProjects, http.MethodGet)
		r.HandleFunc("/organizations/:orgID/projects", s.handlePostProject, http.MethodPost)
		r.HandleFunc("/organizations/:orgID/projects/:projectID/documents", s.handleGetDocuments, http.MethodGet)
		r.HandleFunc("/organizations/:orgID/projects/:projectID/documents", s.handlePostUpload, http.MethodPost)
		r.HandleFunc("/organizations/:orgID/sendable", s.handleGetSendable, http.MethodGet)
		r.HandleFunc("/organizations/:orgID/transmittals", s.handleGetTransmittals, http.MethodGet)
		r.HandleFunc("/organizations/:orgID/transmittals", s.handlePostTransmittal, http.MethodPost)

		r.HandleFunc("/documents/:documentID", s.handleGetDocument, http.MethodGet)
		r.HandleFunc("/documents/:documentID/events", s.handlePostEvent, http.MethodPost)
		r.HandleFunc("/revisions/:revisionID/download", s.handleGetDownload, http.MethodGet)
		r.HandleFunc("/transmittals/:transmittalID", s.handleGetTransmittal, http.MethodGet)
	})
}
