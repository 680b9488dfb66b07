package store

import "slices"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Document struct {
	ID   string
	Name string

	// Content is the transport-ready form of the upload (a data URI).
	Content string
	// Text is the extracted text used as prompt context, empty if extraction failed.
	Text string

	ChatHistory []Message
}

func (d Document) clone() Document {
	d.ChatHistory = slices.Clone(d.ChatHistory)
	return d
}

// PromptContent is what gets sent to the answering service as the document content.
func (d Document) PromptContent() string {
	if d.Text != "" {
		return d.Text
	}
	return d.Content
}

// Snapshot is an immutable view of the store. The transforms below never
// modify their receiver; they return a new Snapshot.
type Snapshot struct {
	Documents []Document
	ActiveID  string
}

func (s Snapshot) clone() Snapshot {
	docs := make([]Document, len(s.Documents))
	for i, d := range s.Documents {
		docs[i] = d.clone()
	}
	return Snapshot{Documents: docs, ActiveID: s.ActiveID}
}

func (s Snapshot) index(id string) int {
	return slices.IndexFunc(s.Documents, func(d Document) bool { return d.ID == id })
}

func (s Snapshot) Has(id string) bool {
	return s.index(id) >= 0
}

func (s Snapshot) Find(id string) (Document, bool) {
	i := s.index(id)
	if i < 0 {
		return Document{}, false
	}
	return s.Documents[i].clone(), true
}

func (s Snapshot) Active() (Document, bool) {
	if s.ActiveID == "" {
		return Document{}, false
	}
	return s.Find(s.ActiveID)
}

func (s Snapshot) AddDocuments(docs []Document) Snapshot {
	next := s.clone()
	for _, d := range docs {
		next.Documents = append(next.Documents, d.clone())
	}
	if next.ActiveID == "" && len(docs) > 0 {
		next.ActiveID = docs[0].ID
	}
	return next
}

func (s Snapshot) RemoveDocument(id string) Snapshot {
	next := s.clone()
	next.Documents = slices.DeleteFunc(next.Documents, func(d Document) bool { return d.ID == id })

	if next.ActiveID == id {
		next.ActiveID = ""
		if len(next.Documents) > 0 {
			next.ActiveID = next.Documents[0].ID
		}
	}
	return next
}

// SetActive ignores ids that are not in the snapshot.
func (s Snapshot) SetActive(id string) Snapshot {
	next := s.clone()
	if next.Has(id) {
		next.ActiveID = id
	}
	return next
}

func (s Snapshot) ReplaceHistory(id string, history []Message) Snapshot {
	next := s.clone()
	if i := next.index(id); i >= 0 {
		next.Documents[i].ChatHistory = slices.Clone(history)
	}
	return next
}
