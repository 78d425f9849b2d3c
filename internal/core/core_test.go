package core_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"doccontrol/internal/core"
	"doccontrol/internal/storage"
	"doccontrol/internal/store/memory"
	"doccontrol/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// stepClock returns a clock that advances one second on every read so that
// ordering by timestamp is deterministic.
func stepClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

type fixture struct {
	svc   *core.Service
	blobs *storage.LocalStorage

	root   core.Actor
	orgA   string
	orgB   string
	adminA core.Actor
	adminB core.Actor
	userA  core.Actor

	// project is owned by orgA; recipient side documents keep it.
	project string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := core.New(memory.NewStore(), blobs, logger, core.WithClock(stepClock()))

	created, err := svc.Bootstrap(ctx, "admin@example.com", "admin")
	require.NoError(t, err)
	require.True(t, created)

	root, err := svc.Authenticate(ctx, "admin@example.com", "admin")
	require.NoError(t, err)

	f := &fixture{svc: svc, blobs: blobs, root: core.ActorFor(root)}

	f.orgA, err = svc.CreateOrganization(ctx, f.root, "Org A", "")
	require.NoError(t, err)
	f.orgB, err = svc.CreateOrganization(ctx, f.root, "Org B", "")
	require.NoError(t, err)

	f.adminA = f.user(t, f.orgA, "admin-a@example.com", types.RoleOrgAdmin)
	f.adminB = f.user(t, f.orgB, "admin-b@example.com", types.RoleOrgAdmin)
	f.userA = f.user(t, f.orgA, "user-a@example.com", types.RoleUser)

	f.project, err = svc.CreateProject(ctx, f.adminA, f.orgA, "P1", "")
	require.NoError(t, err)

	return f
}

func (f *fixture) user(t *testing.T, orgID, email string, role types.Role) core.Actor {
	t.Helper()
	ctx := context.Background()

	id, err := f.svc.CreateUser(ctx, f.root, core.NewUser{
		Email:    email,
		Password: "secret",
		Name:     email,
		Role:     role,
		OrgID:    orgID,
	})
	require.NoError(t, err)

	user, err := f.svc.GetUser(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, user)

	return core.ActorFor(user)
}

func (f *fixture) createDoc(t *testing.T, docNumber, label string) string {
	t.Helper()

	id, err := f.svc.CreateDocument(context.Background(), f.adminA, core.NewDocument{
		DocNumber:     docNumber,
		Title:         "Title " + docNumber,
		DocType:       "Drawing",
		Status:        "IFC",
		OrgID:         f.orgA,
		ProjectID:     f.project,
		RevisionLabel: label,
		FileRef:       "refs/" + docNumber + "/" + label,
	})
	require.NoError(t, err)

	return id
}

func (f *fixture) currentRevisionID(t *testing.T, actor core.Actor, documentID string) string {
	t.Helper()

	doc, err := f.svc.Document(context.Background(), actor, documentID)
	require.NoError(t, err)
	require.NotNil(t, doc.CurrentRevisionID)

	return *doc.CurrentRevisionID
}

// recipientDoc finds a document in orgB's register for the shared project.
func (f *fixture) recipientDoc(t *testing.T, docNumber string) *types.DocumentListing {
	t.Helper()

	docs, err := f.svc.ListDocuments(context.Background(), f.adminB, f.orgB, f.project)
	require.NoError(t, err)

	for _, doc := range docs {
		if doc.DocNumber == docNumber {
			return doc
		}
	}
	return nil
}

func eventsOfType(events []*types.EventEntry, eventType types.EventType) []*types.EventEntry {
	var out []*types.EventEntry
	for _, event := range events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func TestCreateDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("sets current label and logs one Uploaded event", func(t *testing.T) {
		f := newFixture(t)
		id := f.createDoc(t, "DOC-001", "A")

		label, ok, err := f.svc.CurrentRevisionLabel(ctx, f.adminA, id)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "A", label)

		events, err := f.svc.ListEvents(ctx, f.adminA, id)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, types.EventUploaded, events[0].Type)
		require.Equal(t, f.adminA.UserID, events[0].UserID)
		require.Equal(t, "admin-a@example.com", events[0].UserName)
	})

	t.Run("duplicate doc number in project conflicts", func(t *testing.T) {
		f := newFixture(t)
		f.createDoc(t, "DOC-001", "A")

		_, err := f.svc.CreateDocument(ctx, f.adminA, core.NewDocument{
			DocNumber:     "DOC-001",
			Title:         "Other",
			OrgID:         f.orgA,
			ProjectID:     f.project,
			RevisionLabel: "B",
			FileRef:       "refs/other",
		})
		require.ErrorIs(t, err, types.ErrConflict)
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateDocument(ctx, f.adminA, core.NewDocument{
			Title:     "No number",
			OrgID:     f.orgA,
			ProjectID: f.project,
		})
		require.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("project must belong to the organization", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateDocument(ctx, f.adminB, core.NewDocument{
			DocNumber:     "DOC-001",
			Title:         "Wrong project",
			OrgID:         f.orgB,
			ProjectID:     f.project,
			RevisionLabel: "A",
			FileRef:       "refs/x",
		})
		require.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("other organization is forbidden", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateDocument(ctx, f.adminB, core.NewDocument{
			DocNumber:     "DOC-001",
			Title:         "Intrusion",
			OrgID:         f.orgA,
			ProjectID:     f.project,
			RevisionLabel: "A",
			FileRef:       "refs/x",
		})
		require.ErrorIs(t, err, types.ErrForbidden)
	})
}

func TestAddRevision(t *testing.T) {
	ctx := context.Background()

	t.Run("appends newest first and repoints current", func(t *testing.T) {
		f := newFixture(t)
		id := f.createDoc(t, "DOC-001", "A")

		labels := []string{"B", "C", "C"}
		for _, label := range labels {
			_, err := f.svc.AddRevision(ctx, f.userA, id, label, "refs/"+label)
			require.NoError(t, err)
		}

		revs, err := f.svc.ListRevisions(ctx, f.adminA, id)
		require.NoError(t, err)
		require.Len(t, revs, len(labels)+1)
		require.Equal(t, []string{"C", "C", "B", "A"}, []string{revs[0].Label, revs[1].Label, revs[2].Label, revs[3].Label})
		for i := 1; i < len(revs); i++ {
			require.True(t, revs[i-1].UploadedAt.After(revs[i].UploadedAt))
		}

		label, ok, err := f.svc.CurrentRevisionLabel(ctx, f.adminA, id)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "C", label)
		require.Equal(t, revs[0].ID, f.currentRevisionID(t, f.adminA, id))

		events, err := f.svc.ListEvents(ctx, f.adminA, id)
		require.NoError(t, err)
		require.Len(t, eventsOfType(events, types.EventRevisionUploaded), len(labels))
		require.Equal(t, types.EventUploaded, events[len(events)-1].Type)
	})

	t.Run("unknown document is not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.AddRevision(ctx, f.adminA, "missing", "A", "refs/a")
		require.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("empty label fails validation", func(t *testing.T) {
		f := newFixture(t)
		id := f.createDoc(t, "DOC-001", "A")

		_, err := f.svc.AddRevision(ctx, f.adminA, id, " ", "refs/a")
		require.ErrorIs(t, err, types.ErrValidation)
	})
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in := core.UploadInput{
		NewDocument: core.NewDocument{
			DocNumber:     "DOC-010",
			Title:         "Layout",
			OrgID:         f.orgA,
			ProjectID:     f.project,
			RevisionLabel: "A",
		},
		FileName:    "layout.pdf",
		ContentType: "application/pdf",
	}

	first, err := f.svc.Upload(ctx, f.userA, in, strings.NewReader("first"))
	require.NoError(t, err)
	require.True(t, first.Created)

	in.RevisionLabel = "B"
	second, err := f.svc.Upload(ctx, f.userA, in, strings.NewReader("second"))
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Equal(t, first.DocumentID, second.DocumentID)

	rev, body, err := f.svc.OpenRevision(ctx, f.userA, second.RevisionID)
	require.NoError(t, err)
	defer body.Close()
	require.Equal(t, "B", rev.Label)
	require.True(t, strings.HasSuffix(rev.FileRef, "_layout.pdf"))

	content, err := io.ReadAll(body)
	require.NoError(t, err)
	require.Equal(t, "second", string(content))

	_, _, err = f.svc.OpenRevision(ctx, f.adminB, second.RevisionID)
	require.ErrorIs(t, err, types.ErrForbidden)

	events, err := f.svc.ListEvents(ctx, f.userA, first.DocumentID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, types.EventRevisionUploaded, events[0].Type)
	require.Equal(t, types.EventUploaded, events[1].Type)
}

func TestUploadReceivedDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in := core.UploadInput{
		NewDocument: core.NewDocument{
			DocNumber:     "DOC-001",
			Title:         "Title DOC-001",
			OrgID:         f.orgB,
			ProjectID:     f.project,
			RevisionLabel: "A-comments",
		},
		FileName: "markup.pdf",
	}

	_, err := f.svc.Upload(ctx, f.adminB, in, strings.NewReader("too early"))
	require.ErrorIs(t, err, types.ErrNotFound)

	id := f.createDoc(t, "DOC-001", "A")
	_, err = f.svc.Send(ctx, f.adminA, core.SendInput{
		Number:         "TR-1",
		SenderOrgID:    f.orgA,
		RecipientOrgID: f.orgB,
		RevisionIDs:    []string{f.currentRevisionID(t, f.adminA, id)},
	})
	require.NoError(t, err)

	copied := f.recipientDoc(t, "DOC-001")
	require.NotNil(t, copied)

	result, err := f.svc.Upload(ctx, f.adminB, in, strings.NewReader("markup"))
	require.NoError(t, err)
	require.False(t, result.Created)
	require.Equal(t, copied.ID, result.DocumentID)

	label, ok, err := f.svc.CurrentRevisionLabel(ctx, f.adminB, copied.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "A-comments", label)

	events, err := f.svc.ListEvents(ctx, f.adminB, copied.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, types.EventRevisionUploaded, events[0].Type)
	require.Equal(t, types.EventReceived, events[1].Type)

	sourceLabel, _, err := f.svc.CurrentRevisionLabel(ctx, f.adminA, id)
	require.NoError(t, err)
	require.Equal(t, "A", sourceLabel)
}

// failingStore refuses every unit of work once fail is set.
type failingStore struct {
	core.Store
	fail bool
}

func (s *failingStore) Atomic(ctx context.Context, fn func(r core.Repository) error) error {
	if s.fail {
		return errors.New("commit failed")
	}
	return s.Store.Atomic(ctx, fn)
}

func TestUploadRemovesFileWhenCommitFails(t *testing.T) {
	ctx := context.Background()

	root := t.TempDir()
	blobs, err := storage.NewLocalStorage(root)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	st := &failingStore{Store: memory.NewStore()}
	svc := core.New(st, blobs, logger)

	_, err = svc.Bootstrap(ctx, "admin@example.com", "admin")
	require.NoError(t, err)
	admin, err := svc.Authenticate(ctx, "admin@example.com", "admin")
	require.NoError(t, err)
	actor := core.ActorFor(admin)

	orgID, err := svc.CreateOrganization(ctx, actor, "Org A", "")
	require.NoError(t, err)
	projectID, err := svc.CreateProject(ctx, actor, orgID, "P1", "")
	require.NoError(t, err)

	st.fail = true
	_, err = svc.Upload(ctx, actor, core.UploadInput{
		NewDocument: core.NewDocument{
			DocNumber:     "DOC-001",
			Title:         "Plan",
			OrgID:         orgID,
			ProjectID:     projectID,
			RevisionLabel: "A",
		},
		FileName: "plan.pdf",
	}, strings.NewReader("plan"))
	require.ErrorContains(t, err, "commit failed")

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	id := f.createDoc(t, "DOC-001", "A")
	firstRev := f.currentRevisionID(t, f.adminA, id)

	const appends, sends = 40, 10

	var wg sync.WaitGroup
	errs := make(chan error, appends+sends)
	for i := range appends {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AddRevision(ctx, f.userA, id, fmt.Sprintf("R%d", i), fmt.Sprintf("refs/DOC-001/R%d", i))
			errs <- err
		}()
	}
	for i := range sends {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Send(ctx, f.adminA, core.SendInput{
				Number:         fmt.Sprintf("TR-%d", i),
				SenderOrgID:    f.orgA,
				RecipientOrgID: f.orgB,
				RevisionIDs:    []string{firstRev},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assertConsistent := func(actor core.Actor, documentID string, wantRevisions int) {
		t.Helper()

		revs, err := f.svc.ListRevisions(ctx, actor, documentID)
		require.NoError(t, err)
		require.Len(t, revs, wantRevisions)

		doc, err := f.svc.Document(ctx, actor, documentID)
		require.NoError(t, err)
		require.NotNil(t, doc.CurrentRevisionID)
		require.Equal(t, revs[0].ID, *doc.CurrentRevisionID)

		events, err := f.svc.ListEvents(ctx, actor, documentID)
		require.NoError(t, err)

		perRevision := make(map[string]int)
		for _, event := range events {
			switch event.Type {
			case types.EventUploaded, types.EventRevisionUploaded, types.EventReceived:
				require.NotNil(t, event.RevisionID)
				perRevision[*event.RevisionID]++
			}
		}
		require.Len(t, perRevision, len(revs))
		for _, rev := range revs {
			require.Equal(t, 1, perRevision[rev.ID], rev.ID)
		}
	}

	assertConsistent(f.adminA, id, appends+1)

	events, err := f.svc.ListEvents(ctx, f.adminA, id)
	require.NoError(t, err)
	require.Len(t, eventsOfType(events, types.EventSent), sends)

	copied := f.recipientDoc(t, "DOC-001")
	require.NotNil(t, copied)
	assertConsistent(f.adminB, copied.ID, sends)
}

func TestSend(t *testing.T) {
	ctx := context.Background()

	t.Run("replicates revision with identity and file reference", func(t *testing.T) {
		f := newFixture(t)
		id := f.createDoc(t, "DOC-001", "A")
		revID := f.currentRevisionID(t, f.adminA, id)

		transmittalID, err := f.svc.Send(ctx, f.adminA, core.SendInput{
			Number:         "TR-1",
			SenderOrgID:    f.orgA,
			RecipientOrgID: f.orgB,
			RevisionIDs:    []string{revID},
		})
		require.NoError(t, err)
		require.NotEmpty(t, transmittalID)

		source, err := f.svc.Document(ctx, f.adminA, id)
		require.NoError(t, err)

		copied := f.recipientDoc(t, "DOC-001")
		require.NotNil(t, copied)
		require.NotEqual(t, source.ID, copied.ID)
		require.Equal(t, f.orgB, copied.OrgID)
		require.Equal(t, source.Title, copied.Title)
		require.Equal(t, source.DocType, copied.DocType)
		require.Equal(t, source.Status, copied.Status)
		require.Equal(t, source.ProjectID, copied.ProjectID)
		require.Equal(t, "A", *copied.CurrentRevisionLabel)

		revs, err := f.svc.ListRevisions(ctx, f.adminB, copied.ID)
		require.NoError(t, err)
		require.Len(t, revs, 1)
		require.Equal(t, "refs/DOC-001/A", revs[0].FileRef)
		require.Equal(t, f.adminA.UserID, revs[0].UploadedBy)

		received, err := f.svc.ListEvents(ctx, f.adminB, copied.ID)
		require.NoError(t, err)
		require.Len(t, received, 1)
		require.Equal(t, types.EventReceived, received[0].Type)
		require.Contains(t, *received[0].Note, "TR-1")
		require.Contains(t, *received[0].Note, "Org A")
	})

	t.Run("revisions of one doc number produce one recipient document", func(t *testing.T) {
		f := newFixture(t)
		id := f.createDoc(t, "DOC-001", "A")
		r1 := f.currentRevisionID(t, f.adminA, id)
		r2, err := f.svc.AddRevision(ctx, f.adminA, id, "B", "refs/DOC-001/B")
		require.NoError(t, err)

		_, err = f.svc.Send(ctx, f.adminA, core.SendInput{
			Number:         "TR-1",
			SenderOrgID:    f.orgA,
			RecipientOrgID: f.orgB,
			RevisionIDs:    []string{r1, r2},
		})
		require.NoError(t, err)

		docs, err := f.svc.ListDocuments(ctx, f.adminB, f.orgB, f.project)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		require.Equal(t, "B", *docs[0].CurrentRevisionLabel)

		revs, err := f.svc.ListRevisions(ctx, f.adminB, docs[0].ID)
		require.NoError(t, err)
		require.Len(t, revs, 2)
	})

	t.Run("two sends append in order", func(t *testing.T) {
		f := newFixture(t)
		id := f.createDoc(t, "DOC-001", "A")
		revA := f.currentRevisionID(t, f.adminA, id)

		_, err := f.svc.Send(ctx, f.adminA, core.SendInput{Number: "TR-1", SenderOrgID: f.orgA, RecipientOrgID: f.orgB, RevisionIDs: []string{revA}})
		require.NoError(t, err)

		revB, err := f.svc.AddRevision(ctx, f.adminA, id, "B", "refs/DOC-001/B")
		require.NoError(t, err)

		_, err = f.svc.Send(ctx, f.adminA, core.SendInput{Number: "TR-2", SenderOrgID: f.orgA, RecipientOrgID: f.orgB, RevisionIDs: []string{revB}})
		require.NoError(t, err)

		copied := f.recipientDoc(t, "DOC-001")
		require.NotNil(t, copied)
		require.Equal(t, "B", *copied.CurrentRevisionLabel)

		revs, err := f.svc.ListRevisions(ctx, f.adminB, copied.ID)
		require.NoError(t, err)
		require.Len(t, revs, 2)
		require.Equal(t, "B", revs[0].Label)
		require.Equal(t, "A", revs[1].Label)

		transmittals, err := f.svc.ListTransmittals(ctx, f.adminB, f.orgB)
		require.NoError(t, err)
		require.Len(t, transmittals, 2)
		require.Equal(t, "TR-2", transmittals[0].Number)
	})

	t.Run("unknown revision rolls back everything", func(t *testing.T) {
		f := newFixture(t)
		id := f.createDoc(t, "DOC-001", "A")
		revA := f.currentRevisionID(t, f.adminA, id)

		_, err := f.svc.Send(ctx, f.adminA, core.SendInput{
			Number:         "TR-1",
			SenderOrgID:    f.orgA,
			RecipientOrgID: f.orgB,
			RevisionIDs:    []string{revA, "missing"},
		})
		require.ErrorIs(t, err, types.ErrNotFound)

		transmittals, err := f.svc.ListTransmittals(ctx, f.adminA, f.orgA)
		require.NoError(t, err)
		require.Empty(t, transmittals)

		require.Nil(t, f.recipientDoc(t, "DOC-001"))

		events, err := f.svc.ListEvents(ctx, f.adminA, id)
		require.NoError(t, err)
		require.Empty(t, eventsOfType(events, types.EventSent))
	})

	t.Run("duplicate revision ids are sent once", func(t *testing.T) {
		f := newFixture(t)
		id := f.createDoc(t, "DOC-001", "A")
		revA := f.currentRevisionID(t, f.adminA, id)

		transmittalID, err := f.svc.Send(ctx, f.adminA, core.SendInput{
			Number:         "TR-1",
			SenderOrgID:    f.orgA,
			RecipientOrgID: f.orgB,
			RevisionIDs:    []string{revA, revA},
		})
		require.NoError(t, err)

		revs, err := f.svc.TransmittalRevisions(ctx, f.adminB, transmittalID)
		require.NoError(t, err)
		require.Len(t, revs, 1)
		require.Equal(t, "DOC-001", revs[0].DocNumber)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		f := newFixture(t)
		id := f.createDoc(t, "DOC-001", "A")
		revA := f.currentRevisionID(t, f.adminA, id)

		projectB, err := f.svc.CreateProject(ctx, f.adminB, f.orgB, "B1", "")
		require.NoError(t, err)
		foreign, err := f.svc.CreateDocument(ctx, f.adminB, core.NewDocument{
			DocNumber: "B-001", Title: "Foreign", OrgID: f.orgB, ProjectID: projectB, RevisionLabel: "1", FileRef: "refs/b",
		})
		require.NoError(t, err)
		foreignRev := f.currentRevisionID(t, f.adminB, foreign)

		cases := []struct {
			name string
			in   core.SendInput
		}{
			{"no revisions", core.SendInput{Number: "TR-1", SenderOrgID: f.orgA, RecipientOrgID: f.orgB}},
			{"no number", core.SendInput{SenderOrgID: f.orgA, RecipientOrgID: f.orgB, RevisionIDs: []string{revA}}},
			{"recipient is sender", core.SendInput{Number: "TR-1", SenderOrgID: f.orgA, RecipientOrgID: f.orgA, RevisionIDs: []string{revA}}},
			{"unknown recipient", core.SendInput{Number: "TR-1", SenderOrgID: f.orgA, RecipientOrgID: "nowhere", RevisionIDs: []string{revA}}},
			{"revision owned by another org", core.SendInput{Number: "TR-1", SenderOrgID: f.orgA, RecipientOrgID: f.orgB, RevisionIDs: []string{foreignRev}}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := f.svc.Send(ctx, f.adminA, tc.in)
				require.ErrorIs(t, err, types.ErrValidation)
			})
		}
	})

	t.Run("authorization", func(t *testing.T) {
		f := newFixture(t)
		id := f.createDoc(t, "DOC-001", "A")
		revA := f.currentRevisionID(t, f.adminA, id)
		in := core.SendInput{Number: "TR-1", SenderOrgID: f.orgA, RecipientOrgID: f.orgB, RevisionIDs: []string{revA}}

		_, err := f.svc.Send(ctx, f.userA, in)
		require.ErrorIs(t, err, types.ErrForbidden)

		_, err = f.svc.Send(ctx, f.adminB, in)
		require.ErrorIs(t, err, types.ErrForbidden)

		_, err = f.svc.Send(ctx, f.root, in)
		require.NoError(t, err)
	})
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	upload, err := f.svc.Upload(ctx, f.adminA, core.UploadInput{
		NewDocument: core.NewDocument{
			DocNumber:     "DOC-001",
			Title:         "Hello",
			DocType:       "Report",
			Status:        "Issued",
			OrgID:         f.orgA,
			ProjectID:     f.project,
			RevisionLabel: "A",
		},
		FileName: "hello.txt",
	}, strings.NewReader("hello"))
	require.NoError(t, err)

	transmittalID, err := f.svc.Send(ctx, f.adminA, core.SendInput{
		Number:         "TR-1",
		Description:    "First issue",
		SenderOrgID:    f.orgA,
		RecipientOrgID: f.orgB,
		RevisionIDs:    []string{upload.RevisionID},
	})
	require.NoError(t, err)

	copied := f.recipientDoc(t, "DOC-001")
	require.NotNil(t, copied)
	require.Equal(t, "A", *copied.CurrentRevisionLabel)

	_, body, err := f.svc.OpenRevision(ctx, f.adminB, *copied.CurrentRevisionID)
	require.NoError(t, err)
	content, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	require.Equal(t, "hello", string(content))

	events, err := f.svc.ListEvents(ctx, f.adminA, upload.DocumentID)
	require.NoError(t, err)
	sent := eventsOfType(events, types.EventSent)
	require.Len(t, sent, 1)
	require.Contains(t, *sent[0].Note, "TR-1")
	require.Equal(t, upload.RevisionID, *sent[0].RevisionID)

	transmittal, err := f.svc.Transmittal(ctx, f.adminB, transmittalID)
	require.NoError(t, err)
	require.Equal(t, "First issue", transmittal.Description)
	require.Equal(t, f.adminA.UserID, transmittal.CreatedBy)

	third, err := f.svc.CreateOrganization(ctx, f.root, "Org C", "")
	require.NoError(t, err)
	outsider := f.user(t, third, "c@example.com", types.RoleOrgAdmin)

	_, err = f.svc.Transmittal(ctx, outsider, transmittalID)
	require.ErrorIs(t, err, types.ErrForbidden)
}

func TestRecordEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.createDoc(t, "DOC-001", "A")
	revA := f.currentRevisionID(t, f.adminA, id)

	err := f.svc.RecordEvent(ctx, f.userA, id, &revA, "Reviewed", "looks fine")
	require.NoError(t, err)

	events, err := f.svc.ListEvents(ctx, f.adminA, id)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, types.EventType("Reviewed"), events[0].Type)
	require.Equal(t, "looks fine", *events[0].Note)

	other := f.createDoc(t, "DOC-002", "A")
	otherRev := f.currentRevisionID(t, f.adminA, other)
	err = f.svc.RecordEvent(ctx, f.userA, id, &otherRev, "Reviewed", "")
	require.ErrorIs(t, err, types.ErrValidation)

	err = f.svc.RecordEvent(ctx, f.userA, id, nil, "", "")
	require.ErrorIs(t, err, types.ErrValidation)

	for _, reserved := range []types.EventType{types.EventUploaded, types.EventRevisionUploaded, types.EventSent, types.EventReceived, " sent "} {
		err = f.svc.RecordEvent(ctx, f.userA, id, &revA, reserved, "forged")
		require.ErrorIs(t, err, types.ErrValidation, reserved)
	}

	events, err = f.svc.ListEvents(ctx, f.adminA, id)
	require.NoError(t, err)
	require.Len(t, events, 2)

	err = f.svc.RecordEvent(ctx, f.adminB, id, nil, "Reviewed", "")
	require.ErrorIs(t, err, types.ErrForbidden)
}

func TestListDocuments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, number := range []string{"DOC-003", "DOC-001", "DOC-002"} {
		f.createDoc(t, number, "A")
	}

	docs, err := f.svc.ListDocuments(ctx, f.userA, f.orgA, f.project)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	require.Equal(t, "DOC-001", docs[0].DocNumber)
	require.Equal(t, "DOC-002", docs[1].DocNumber)
	require.Equal(t, "DOC-003", docs[2].DocNumber)

	_, err = f.svc.ListDocuments(ctx, f.adminB, f.orgA, f.project)
	require.ErrorIs(t, err, types.ErrForbidden)

	_, err = f.svc.ListDocuments(ctx, f.adminA, f.orgA, "missing")
	require.ErrorIs(t, err, types.ErrNotFound)

	sendable, err := f.svc.SendableRevisions(ctx, f.adminA, f.orgA)
	require.NoError(t, err)
	require.Len(t, sendable, 3)
}

func TestIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("bootstrap runs once", func(t *testing.T) {
		f := newFixture(t)

		created, err := f.svc.Bootstrap(ctx, "admin@example.com", "admin")
		require.NoError(t, err)
		require.False(t, created)
	})

	t.Run("authenticate rejects bad credentials", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Authenticate(ctx, "admin-a@example.com", "wrong")
		require.ErrorIs(t, err, types.ErrInvalidCredentials)

		_, err = f.svc.Authenticate(ctx, "nobody@example.com", "secret")
		require.ErrorIs(t, err, types.ErrInvalidCredentials)

		user, err := f.svc.Authenticate(ctx, "admin-a@example.com", "secret")
		require.NoError(t, err)
		require.Equal(t, f.adminA.UserID, user.ID)
	})

	t.Run("lookups return nil for unknown ids", func(t *testing.T) {
		f := newFixture(t)

		org, err := f.svc.GetOrganization(ctx, "missing")
		require.NoError(t, err)
		require.Nil(t, org)

		user, err := f.svc.GetUser(ctx, "missing")
		require.NoError(t, err)
		require.Nil(t, user)

		project, err := f.svc.GetProject(ctx, "missing")
		require.NoError(t, err)
		require.Nil(t, project)

		user, err = f.svc.GetUserByEmail(ctx, "missing@example.com")
		require.NoError(t, err)
		require.Nil(t, user)

		user, err = f.svc.GetUserByEmail(ctx, " admin-a@example.com ")
		require.NoError(t, err)
		require.Equal(t, f.adminA.UserID, user.ID)
	})

	t.Run("uniqueness conflicts", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateOrganization(ctx, f.root, "Org A", "")
		require.ErrorIs(t, err, types.ErrConflict)

		_, err = f.svc.CreateUser(ctx, f.adminA, core.NewUser{Email: "user-a@example.com", Password: "x", OrgID: f.orgA})
		require.ErrorIs(t, err, types.ErrConflict)
	})

	t.Run("role rules on user creation", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CreateUser(ctx, f.adminA, core.NewUser{Email: "new-admin@example.com", Password: "x", Role: types.RoleOrgAdmin, OrgID: f.orgA})
		require.ErrorIs(t, err, types.ErrForbidden)

		id, err := f.svc.CreateUser(ctx, f.adminA, core.NewUser{Email: "escalate@example.com", Password: "x", Role: types.RoleSuperAdmin, OrgID: f.orgA})
		require.NoError(t, err)
		user, err := f.svc.GetUser(ctx, id)
		require.NoError(t, err)
		require.Equal(t, types.RoleUser, user.Role)

		_, err = f.svc.CreateUser(ctx, f.adminA, core.NewUser{Email: "elsewhere@example.com", Password: "x", OrgID: f.orgB})
		require.ErrorIs(t, err, types.ErrForbidden)

		_, err = f.svc.CreateUser(ctx, f.userA, core.NewUser{Email: "peer@example.com", Password: "x", OrgID: f.orgA})
		require.ErrorIs(t, err, types.ErrForbidden)
	})

	t.Run("directory listings", func(t *testing.T) {
		f := newFixture(t)

		orgs, err := f.svc.Organizations(ctx, f.root)
		require.NoError(t, err)
		require.Equal(t, []string{"Global", "Org A", "Org B"}, []string{orgs[0].Name, orgs[1].Name, orgs[2].Name})

		_, err = f.svc.Organizations(ctx, f.adminA)
		require.ErrorIs(t, err, types.ErrForbidden)

		recipients, err := f.svc.RecipientCandidates(ctx, f.adminA)
		require.NoError(t, err)
		for _, org := range recipients {
			require.NotEqual(t, f.orgA, org.ID)
		}
		require.Len(t, recipients, 2)

		users, err := f.svc.UsersByOrg(ctx, f.adminA, f.orgA)
		require.NoError(t, err)
		require.Len(t, users, 2)

		projects, err := f.svc.ProjectsByOrg(ctx, f.userA, f.orgA)
		require.NoError(t, err)
		require.Len(t, projects, 1)
		require.Equal(t, "P1", projects[0].Name)

		_, err = f.svc.CreateProject(ctx, f.userA, f.orgA, "P2", "")
		require.ErrorIs(t, err, types.ErrForbidden)
	})
}
