package server

import (
	"net/http"

	"doccontrol/internal/core"
	"doccontrol/pkg/types"
)

type organizationForm struct {
	Name        string `form:"name"`
	Description string `form:"description"`
}

type userForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Name     string `form:"name"`
	Role     string `form:"role"`
}

type projectForm struct {
	Name        string `form:"name"`
	Description string `form:"description"`
}

type createdResponse struct {
	ID string `json:"id"`
}

// decodeForm parses the request body into dst and writes a 400 when that
// fails. It reports whether the handler should continue.
func (s *Service) decodeForm(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, "invalid form payload")
		return false
	}

	if err := decoder.Decode(dst, r.Form); err != nil {
		s.logger.WithError(err).Debug("failed to decode form")
		s.badRequest(w, "invalid form payload")
		return false
	}

	return true
}

func (s *Service) handleGetOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.core.Organizations(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, orgs)
}

func (s *Service) handlePostOrganization(w http.ResponseWriter, r *http.Request) {
	var in organizationForm
	if !s.decodeForm(w, r, &in) {
		return
	}

	id, err := s.core.CreateOrganization(r.Context(), actorFromContext(r.Context()), in.Name, in.Description)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Service) handleGetRecipients(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.core.RecipientCandidates(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, orgs)
}

func (s *Service) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("orgID")

	users, err := s.core.UsersByOrg(r.Context(), actorFromContext(r.Context()), orgID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, users)
}

func (s *Service) handlePostUser(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("orgID")

	var in userForm
	if !s.decodeForm(w, r, &in) {
		return
	}

	id, err := s.core.CreateUser(r.Context(), actorFromContext(r.Context()), core.NewUser{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
		Role:     types.Role(in.Role),
		OrgID:    orgID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Service) handleGetProjects(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("orgID")

	projects, err := s.core.ProjectsByOrg(r.Context(), actorFromContext(r.Context()), orgID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, projects)
}

func (s *Service) handlePostProject(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("orgID")

	var in projectForm
	if !s.decodeForm(w, r, &in) {
		return
	}

	id, err := s.core.CreateProject(r.Context(), actorFromContext(r.Context()), orgID, in.Name, in.Description)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}
