package types

import "time"

type Transmittal struct {
	ID             string    `db:"id" json:"id"`
	Number         string    `db:"transmittal_number" json:"transmittalNumber"`
	Description    string    `db:"description" json:"description"`
	SenderOrgID    string    `db:"sender_org_id" json:"senderOrgId"`
	RecipientOrgID string    `db:"recipient_org_id" json:"recipientOrgId"`
	CreatedBy      string    `db:"created_by" json:"createdBy"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// TransmittalRevision links a revision to a transmittal. Position keeps the
// order the revisions were supplied in.
type TransmittalRevision struct {
	TransmittalID string `db:"transmittal_id"`
	RevisionID    string `db:"revision_id"`
	Position      int    `db:"position"`
}

// TransmittedRevision is a revision as listed on a transmittal, with the
// identity of the sender-side document it belongs to.
type TransmittedRevision struct {
	Revision
	DocNumber string `db:"doc_number" json:"docNumber"`
	Title     string `db:"title" json:"title"`
}
