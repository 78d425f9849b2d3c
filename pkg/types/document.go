package types

import "time"

// Document is one entry of an organization's register. (DocNumber, OrgID,
// ProjectID) is unique.
type Document struct {
	ID                string    `db:"id" json:"id"`
	DocNumber         string    `db:"doc_number" json:"docNumber"`
	Title             string    `db:"title" json:"title"`
	DocType           string    `db:"doc_type" json:"docType"`
	Status            string    `db:"status" json:"status"`
	OrgID             string    `db:"org_id" json:"orgId"`
	ProjectID         string    `db:"project_id" json:"projectId"`
	CurrentRevisionID *string   `db:"current_revision_id" json:"currentRevisionId,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
}

// Revision is an uploaded version of a document. Revisions are never edited
// or removed. Seq is assigned by the store and orders revisions that share an
// upload timestamp.
type Revision struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"documentId"`
	Label      string    `db:"label" json:"label"`
	FileRef    string    `db:"file_ref" json:"fileRef"`
	UploadedBy string    `db:"uploaded_by" json:"uploadedBy"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploadedAt"`
	Seq        int64     `db:"seq" json:"-"`
}

// DocumentListing is a register row together with its current revision label.
type DocumentListing struct {
	Document
	CurrentRevisionLabel *string `db:"current_revision_label" json:"currentRevisionLabel,omitempty"`
}
