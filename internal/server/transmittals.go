package server

import (
	"net/http"

	"doccontrol/internal/core"
	"doccontrol/pkg/types"
)

type transmittalForm struct {
	Number         string   `form:"transmittal_number"`
	Description    string   `form:"description"`
	RecipientOrgID string   `form:"recipient_org_id"`
	RevisionIDs    []string `form:"revision_id"`
}

type transmittalDetail struct {
	Transmittal *types.Transmittal           `json:"transmittal"`
	Revisions   []*types.TransmittedRevision `json:"revisions"`
}

func (s *Service) handleGetTransmittals(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("orgID")

	transmittals, err := s.core.ListTransmittals(r.Context(), actorFromContext(r.Context()), orgID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, transmittals)
}

func (s *Service) handleGetSendable(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("orgID")

	docs, err := s.core.SendableRevisions(r.Context(), actorFromContext(r.Context()), orgID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, docs)
}

func (s *Service) handlePostTransmittal(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("orgID")

	var in transmittalForm
	if !s.decodeForm(w, r, &in) {
		return
	}

	id, err := s.core.Send(r.Context(), actorFromContext(r.Context()), core.SendInput{
		Number:         in.Number,
		Description:    in.Description,
		SenderOrgID:    orgID,
		RecipientOrgID: in.RecipientOrgID,
		RevisionIDs:    in.RevisionIDs,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Service) handleGetTransmittal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := actorFromContext(ctx)
	transmittalID := r.PathValue("transmittalID")

	transmittal, err := s.core.Transmittal(ctx, actor, transmittalID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	revisions, err := s.core.TransmittalRevisions(ctx, actor, transmittalID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, transmittalDetail{Transmittal: transmittal, Revisions: revisions})
}
