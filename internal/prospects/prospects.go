// Package prospects provides access to materialized prospect lists. The pipeline
// treats lists as an external collaborator: it holds only an opaque reference and
// resolves it through a Provider.
package prospects

import (
	"context"
	"fmt"
)

// Prospect is one addressable contact inside a list.
type Prospect struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Title     string `json:"title,omitempty"`
	Website   string `json:"website,omitempty"`
	Industry  string `json:"industry,omitempty"`
}

// List is a materialized prospect collection.
type List struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Prospects []Prospect `json:"prospects"`
}

// Provider resolves list references to their contents.
type Provider interface {
	GetList(ctx context.Context, id string) (*List, error)
}

// ListNotFoundError indicates a list reference that does not resolve.
type ListNotFoundError struct {
	ListID string
}

func (e *ListNotFoundError) Error() string {
	return fmt.Sprintf("prospect list not found: %s", e.ListID)
}

// StaticProvider serves lists from memory. Used by the CLI (lists loaded from a JSON
// file) and by tests.
type StaticProvider struct {
	lists map[string]*List
}

// NewStaticProvider creates a provider over a fixed set of lists.
func NewStaticProvider(lists ...*List) *StaticProvider {
	p := &StaticProvider{lists: make(map[string]*List, len(lists))}
	for _, l := range lists {
		p.lists[l.ID] = l
	}
	return p
}

// GetList returns the list with the given id.
func (p *StaticProvider) GetList(_ context.Context, id string) (*List, error) {
	l, ok := p.lists[id]
	if !ok {
		return nil, &ListNotFoundError{ListID: id}
	}
	return l, nil
}
