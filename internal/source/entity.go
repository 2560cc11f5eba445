package source

import (
	"context"
	"fmt"
	"time"
)

// Entity is a single row of a paginated collection. ID is the identity and is stable.
type Entity struct {
	ID    string         `json:"id"             yaml:"id"`
	Name  string         `json:"name,omitempty" yaml:"name,omitempty"`
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Cursor is an opaque continuation token. The zero Cursor means "start of collection"
// on input and "no further pages" on output.
type Cursor struct {
	token string
}

// MakeCursor mints a cursor. Only source implementations should call it.
func MakeCursor(token string) Cursor {
	return Cursor{token: token}
}

// Token returns the raw token. Only source implementations should call it.
func (c Cursor) Token() string {
	return c.token
}

// IsZero reports whether c is the null cursor.
func (c Cursor) IsZero() bool {
	return c.token == ""
}

// String implements fmt.Stringer for logging.
func (c Cursor) String() string {
	if c.IsZero() {
		return "<start>"
	}
	return c.token
}

// Page is one slice of a collection.
type Page struct {
	Items   []Entity
	Next    Cursor
	HasMore bool
}

// Validate checks the terminal-state invariant: Next is null exactly when HasMore is false.
func (p Page) Validate() error {
	if p.Next.IsZero() == p.HasMore {
		return &DecodeError{
			Op:  "page",
			Err: fmt.Errorf("inconsistent page: has_more=%t next=%q", p.HasMore, p.Next.token),
		}
	}
	return nil
}

// Metadata carries the counters shown in previews and detail views.
type Metadata struct {
	Views    int    `json:"views"    yaml:"views"`
	Likes    int    `json:"likes"    yaml:"likes"`
	Category string `json:"category" yaml:"category"`
}

// DetailRecord is the full record returned by a DetailSource.
type DetailRecord struct {
	ID          string    `json:"id"                     yaml:"id"`
	Name        string    `json:"name,omitempty"         yaml:"name,omitempty"`
	Description string    `json:"description,omitempty"  yaml:"description,omitempty"`
	ExtraField1 string    `json:"extra_field_1,omitempty" yaml:"extra_field_1,omitempty"`
	ExtraField2 string    `json:"extra_field_2,omitempty" yaml:"extra_field_2,omitempty"`
	CreatedAt   time.Time `json:"created_at"             yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"             yaml:"updated_at"`
	Metadata    *Metadata `json:"metadata,omitempty"     yaml:"metadata,omitempty"`
}

// PaginatedSource yields pages of entities. Callers pass back the Next cursor of the
// previous page and must not build cursors themselves.
type PaginatedSource interface {
	FetchPage(ctx context.Context, cursor Cursor) (Page, error)
}

// DetailSource resolves a single entity.
type DetailSource interface {
	FetchDetail(ctx context.Context, entityID string) (DetailRecord, error)
}

// Backend is a source that serves both pages and details.
type Backend interface {
	PaginatedSource
	DetailSource
}
