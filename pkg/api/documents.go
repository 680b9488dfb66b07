package api

import "github.com/google/uuid"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	// HTML is only set when the history is requested with format=html.
	HTML string `json:"html,omitempty"`
}

type DocumentSummary struct {
	Id            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	MessageCount  int       `json:"message_count"`
	AwaitingReply bool      `json:"awaiting_reply"`
}

type ListDocumentsResponse struct {
	Documents []DocumentSummary `json:"documents"`
	ActiveId  *uuid.UUID        `json:"active_id"`
}

type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type FileFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

type UploadDocumentsResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Rejected  []string          `json:"rejected"`
	Failures  []FileFailure     `json:"failures"`
	Notices   []Notice          `json:"notices"`
	ActiveId  *uuid.UUID        `json:"active_id"`
}

type GetDocumentParams struct {
	IncludeContent bool `schema:"include_content"`
}

type Document struct {
	Id            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Content       string    `json:"content,omitempty"`
	ChatHistory   []Message `json:"chat_history"`
	AwaitingReply bool      `json:"awaiting_reply"`
	Active        bool      `json:"active"`
}

type ActiveDocumentResponse struct {
	ActiveId *uuid.UUID `json:"active_id"`
}
