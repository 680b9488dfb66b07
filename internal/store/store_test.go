package store_test

import (
	"fmt"
	"math/rand"
	"testing"

	"pdf-insight/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(id, name string) store.Document {
	return store.Document{ID: id, Name: name, Content: "data:application/pdf;base64,JVBERi0=" + id}
}

func TestAddDocumentsActivatesFirstWhenNothingActive(t *testing.T) {
	s := store.New()

	active, err := s.AddDocuments([]store.Document{doc("a", "report.pdf"), doc("b", "other.pdf")})
	require.NoError(t, err)
	assert.Equal(t, "a", active)

	active, err = s.AddDocuments([]store.Document{doc("c", "third.pdf")})
	require.NoError(t, err)
	assert.Equal(t, "a", active, "an existing active document must be kept")

	snap := s.Snapshot()
	require.Len(t, snap.Documents, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{snap.Documents[0].ID, snap.Documents[1].ID, snap.Documents[2].ID})
}

func TestAddDocumentsRejectsDuplicateIds(t *testing.T) {
	s := store.New()
	_, err := s.AddDocuments([]store.Document{doc("a", "report.pdf")})
	require.NoError(t, err)

	_, err = s.AddDocuments([]store.Document{doc("a", "again.pdf")})
	assert.Error(t, err)

	_, err = s.AddDocuments([]store.Document{doc("x", "1.pdf"), doc("x", "2.pdf")})
	assert.Error(t, err)

	assert.Len(t, s.Snapshot().Documents, 1)
}

func TestRemoveActiveDocumentActivatesFirstRemaining(t *testing.T) {
	s := store.New()
	_, err := s.AddDocuments([]store.Document{doc("a", "one.pdf"), doc("b", "two.pdf")})
	require.NoError(t, err)

	active, err := s.RemoveDocument("a")
	require.NoError(t, err)
	assert.Equal(t, "b", active)

	active, err = s.RemoveDocument("b")
	require.NoError(t, err)
	assert.Equal(t, "", active)
	assert.Empty(t, s.Snapshot().Documents)
}

func TestRemoveInactiveDocumentKeepsActive(t *testing.T) {
	s := store.New()
	_, err := s.AddDocuments([]store.Document{doc("a", "one.pdf"), doc("b", "two.pdf"), doc("c", "three.pdf")})
	require.NoError(t, err)
	require.NoError(t, s.SetActive("c"))

	active, err := s.RemoveDocument("b")
	require.NoError(t, err)
	assert.Equal(t, "c", active)
}

func TestRemoveUnknownDocument(t *testing.T) {
	s := store.New()
	_, err := s.RemoveDocument("missing")
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
}

func TestSetActiveIsIdempotent(t *testing.T) {
	s := store.New()
	_, err := s.AddDocuments([]store.Document{doc("a", "one.pdf"), doc("b", "two.pdf")})
	require.NoError(t, err)

	require.NoError(t, s.SetActive("b"))
	once := s.Snapshot()
	require.NoError(t, s.SetActive("b"))
	assert.Equal(t, once, s.Snapshot())
}

func TestSetActiveStaleIdIsIgnored(t *testing.T) {
	s := store.New()
	_, err := s.AddDocuments([]store.Document{doc("a", "one.pdf")})
	require.NoError(t, err)

	before := s.Snapshot()
	err = s.SetActive("gone")
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
	assert.Equal(t, before, s.Snapshot())

	// The pure transform is a no-op as well.
	assert.Equal(t, before, before.SetActive("gone"))
}

func TestReplaceHistoryOnlyTouchesTarget(t *testing.T) {
	s := store.New()
	_, err := s.AddDocuments([]store.Document{doc("a", "one.pdf"), doc("b", "two.pdf")})
	require.NoError(t, err)

	history := []store.Message{
		{Role: store.RoleUser, Content: "hi"},
		{Role: store.RoleAssistant, Content: "hello"},
	}
	require.NoError(t, s.ReplaceHistory("a", history))

	a, err := s.Document("a")
	require.NoError(t, err)
	assert.Equal(t, history, a.ChatHistory)

	b, err := s.Document("b")
	require.NoError(t, err)
	assert.Empty(t, b.ChatHistory)

	// mutating the caller's slice must not leak into the store
	history[0].Content = "changed"
	a, err = s.Document("a")
	require.NoError(t, err)
	assert.Equal(t, "hi", a.ChatHistory[0].Content)

	assert.ErrorIs(t, s.ReplaceHistory("missing", history), store.ErrDocumentNotFound)
}

func TestAppendMessagesGrowsByOne(t *testing.T) {
	s := store.New()
	_, err := s.AddDocuments([]store.Document{doc("a", "one.pdf")})
	require.NoError(t, err)

	h, err := s.AppendMessages("a", store.Message{Role: store.RoleUser, Content: "q"})
	require.NoError(t, err)
	assert.Len(t, h, 1)

	h, err = s.AppendMessages("a", store.Message{Role: store.RoleAssistant, Content: "r"})
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, store.RoleUser, h[0].Role)
	assert.Equal(t, store.RoleAssistant, h[1].Role)

	_, err = s.AppendMessages("missing", store.Message{Role: store.RoleUser, Content: "q"})
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
}

func TestSnapshotsAreIsolatedCopies(t *testing.T) {
	s := store.New()
	_, err := s.AddDocuments([]store.Document{doc("a", "one.pdf")})
	require.NoError(t, err)
	_, err = s.AppendMessages("a", store.Message{Role: store.RoleUser, Content: "q"})
	require.NoError(t, err)

	snap := s.Snapshot()
	snap.Documents[0].Name = "renamed.pdf"
	snap.Documents[0].ChatHistory[0].Content = "tampered"
	snap.ActiveID = "nope"

	fresh := s.Snapshot()
	assert.Equal(t, "one.pdf", fresh.Documents[0].Name)
	assert.Equal(t, "q", fresh.Documents[0].ChatHistory[0].Content)
	assert.Equal(t, "a", fresh.ActiveID)
}

func TestNameAndContentSurviveStoreOperations(t *testing.T) {
	s := store.New()
	original := doc("a", "report.pdf")
	_, err := s.AddDocuments([]store.Document{original, doc("b", "two.pdf")})
	require.NoError(t, err)

	require.NoError(t, s.SetActive("b"))
	_, err = s.AppendMessages("a", store.Message{Role: store.RoleUser, Content: "q"})
	require.NoError(t, err)
	require.NoError(t, s.ReplaceHistory("a", nil))
	_, err = s.RemoveDocument("b")
	require.NoError(t, err)

	got, err := s.Document("a")
	require.NoError(t, err)
	assert.Equal(t, original.Name, got.Name)
	assert.Equal(t, original.Content, got.Content)
}

func TestActiveIdAlwaysReferencesExistingDocument(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := store.New()
	next := 0

	for step := 0; step < 500; step++ {
		snap := s.Snapshot()
		switch op := rng.Intn(3); {
		case op == 0 || len(snap.Documents) == 0:
			n := rng.Intn(3) + 1
			var docs []store.Document
			for i := 0; i < n; i++ {
				next++
				docs = append(docs, doc(fmt.Sprint(next), fmt.Sprintf("%d.pdf", next)))
			}
			_, err := s.AddDocuments(docs)
			require.NoError(t, err)
		case op == 1:
			victim := snap.Documents[rng.Intn(len(snap.Documents))].ID
			_, err := s.RemoveDocument(victim)
			require.NoError(t, err)
		default:
			target := snap.Documents[rng.Intn(len(snap.Documents))].ID
			require.NoError(t, s.SetActive(target))
		}

		after := s.Snapshot()
		if after.ActiveID != "" {
			assert.True(t, after.Has(after.ActiveID), "active id %s missing at step %d", after.ActiveID, step)
		} else {
			assert.Empty(t, after.Documents, "documents exist but none active at step %d", step)
		}
	}
}
