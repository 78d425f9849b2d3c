package server

import (
	"fmt"
	"io"
	"net/http"
	"path"

	"doccontrol/internal/core"
	"doccontrol/pkg/types"
)

const maxUploadMemory = 32 << 20

type uploadForm struct {
	DocNumber     string `form:"doc_number"`
	Title         string `form:"title"`
	DocType       string `form:"doc_type"`
	Status        string `form:"status"`
	RevisionLabel string `form:"revision"`
}

type eventForm struct {
	EventType  string `form:"event_type"`
	RevisionID string `form:"revision_id"`
	Note       string `form:"note"`
}

type documentDetail struct {
	Document             *types.Document     `json:"document"`
	CurrentRevisionLabel string              `json:"currentRevisionLabel,omitempty"`
	Revisions            []*types.Revision   `json:"revisions"`
	Events               []*types.EventEntry `json:"events"`
}

func (s *Service) handleGetDocuments(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("orgID")
	projectID := r.PathValue("projectID")

	docs, err := s.core.ListDocuments(r.Context(), actorFromContext(r.Context()), orgID, projectID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, docs)
}

// handlePostUpload accepts a multipart form with the document fields and a
// "file" part. An existing doc number in the project gets a new revision.
func (s *Service) handlePostUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID := r.PathValue("orgID")
	projectID := r.PathValue("projectID")

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.badRequest(w, "invalid multipart payload")
		return
	}

	var in uploadForm
	if err := decoder.Decode(&in, r.MultipartForm.Value); err != nil {
		s.badRequest(w, "invalid form payload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.badRequest(w, "file is required")
		return
	}
	defer file.Close()

	result, err := s.core.Upload(ctx, actorFromContext(ctx), core.UploadInput{
		NewDocument: core.NewDocument{
			DocNumber:     in.DocNumber,
			Title:         in.Title,
			DocType:       in.DocType,
			Status:        in.Status,
			OrgID:         orgID,
			ProjectID:     projectID,
			RevisionLabel: in.RevisionLabel,
		},
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, file)
	if err != nil {
		s.writeError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}

	s.writeJSON(w, status, result)
}

func (s *Service) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := actorFromContext(ctx)
	documentID := r.PathValue("documentID")

	doc, err := s.core.Document(ctx, actor, documentID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	label, _, err := s.core.CurrentRevisionLabel(ctx, actor, documentID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	revisions, err := s.core.ListRevisions(ctx, actor, documentID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	events, err := s.core.ListEvents(ctx, actor, documentID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, documentDetail{
		Document:             doc,
		CurrentRevisionLabel: label,
		Revisions:            revisions,
		Events:               events,
	})
}

func (s *Service) handlePostEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID := r.PathValue("documentID")

	var in eventForm
	if !s.decodeForm(w, r, &in) {
		return
	}

	var revisionID *string
	if in.RevisionID != "" {
		revisionID = &in.RevisionID
	}

	err := s.core.RecordEvent(ctx, actorFromContext(ctx), documentID, revisionID, types.EventType(in.EventType), in.Note)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleGetDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	revisionID := r.PathValue("revisionID")

	rev, body, err := s.core.OpenRevision(ctx, actorFromContext(ctx), revisionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(rev.FileRef)))

	if _, err := io.Copy(w, body); err != nil {
		s.logger.WithError(err).WithField("revision_id", revisionID).Error("failed to stream revision file")
	}
}
