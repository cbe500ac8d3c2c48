// Package druginfo defines the drug-registry lookup boundary.
package druginfo

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured means no usable registry key is set.
	ErrNotConfigured = errors.New("drug registry key not configured")
	// ErrNoData means the registry had no item matching the name.
	ErrNoData = errors.New("no registry data for drug")
)

// Item is the first registry match for a drug name. Empty strings mean the
// registry left the field blank.
type Item struct {
	ItemSeq     string `json:"itemSeq"`
	ItemName    string `json:"itemName"`
	EntpName    string `json:"entpName"`
	Efficacy    string `json:"efcyQesitm"`
	UseMethod   string `json:"useMethodQesitm"`
	Warning     string `json:"atpnWarnQesitm"`
	Precaution  string `json:"atpnQesitm"`
	Interaction string `json:"intrcQesitm"`
	SideEffect  string `json:"seQesitm"`
	Storage     string `json:"depositMethodQesitm"`
	ImageURL    string `json:"itemImage"`
}

// Lookup resolves a canonical drug name to registry metadata.
// Implementations return ErrNotConfigured or ErrNoData for those outcomes and
// a wrapped transport error for anything else.
type Lookup interface {
	Lookup(ctx context.Context, name string) (*Item, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, name string) (*Item, error)

func (f LookupFunc) Lookup(ctx context.Context, name string) (*Item, error) { return f(ctx, name) }
