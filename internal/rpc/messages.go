package rpc

import "time"

type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Document is one record of a named collection. Fields is opaque payload;
// numbers arrive as float64 after decoding.
type Document struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Revision   int64          `json:"revision"`
	Fields     map[string]any `json:"fields"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Filter matches documents whose Field equals Value.
type Filter struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type Order struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type CreateIdentityRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type IdentityResponse struct {
	Identity Identity `json:"identity"`
}

// CreateSessionRequest signs in. Previous is the token the device held
// before, if any; the server revokes that session as part of the sign-in.
type CreateSessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Previous string `json:"previous,omitempty"`
}

type CreateSessionResponse struct {
	Token     string    `json:"token"`
	Identity  Identity  `json:"identity"`
	ExpiresAt time.Time `json:"expires_at"`
}

type DeleteSessionRequest struct{}

type DeleteSessionResponse struct{}

type GetSessionRequest struct{}

type ListDocumentsRequest struct {
	Collection string   `json:"collection"`
	Filters    []Filter `json:"filters,omitempty"`
	OrderBy    *Order   `json:"order_by,omitempty"`
	Limit      int      `json:"limit,omitempty"`
	Offset     int      `json:"offset,omitempty"`
}

type ListDocumentsResponse struct {
	Documents []*Document `json:"documents"`
}

type CreateDocumentRequest struct {
	Collection string         `json:"collection"`
	Fields     map[string]any `json:"fields"`
}

// UpdateDocumentRequest merges Fields into the stored document. A positive
// ExpectedRevision makes the write conditional on the stored revision.
type UpdateDocumentRequest struct {
	Collection       string         `json:"collection"`
	ID               string         `json:"id"`
	Fields           map[string]any `json:"fields"`
	ExpectedRevision int64          `json:"expected_revision,omitempty"`
}

type DocumentResponse struct {
	Document *Document `json:"document"`
}

type DeleteDocumentRequest struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

type DeleteDocumentResponse struct{}
