package driver

import (
	"errors"
	"strings"
	"time"
)

// Source distinguishes the two rosters a driver name can come from.
type Source string

const (
	SourceExternal  Source = "EXTERNAL"  // authoritative external roster, read-only
	SourceTemporary Source = "TEMPORARY" // locally managed ad hoc drivers
)

// Ref identifies a driver at the API boundary. Only DisplayName is ever
// persisted on trips and invoice assignments; matching is by name equality.
type Ref struct {
	DisplayName string
	Source      Source
	SourceID    string // surrogate id for temporary drivers, empty for external
}

// Temporary is the domain entity corresponding to the `pilotos_temporales`
// table: an ad hoc/contract driver not present in the external roster.
type Temporary struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	Name   string
	Active bool
	Notes  string
}

var (
	ErrNameRequired = errors.New("driver name is required")

	// ErrUnknownDriver is returned when a name appears in neither roster.
	ErrUnknownDriver = errors.New("el piloto no existe en ningún registro")
)

// NewTemporary creates an active temporary driver.
func NewTemporary(name, notes string) (*Temporary, error) {
	if name = strings.TrimSpace(name); name == "" {
		return nil, ErrNameRequired
	}

	now := time.Now().UTC()
	return &Temporary{
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
		Active:    true,
		Notes:     strings.TrimSpace(notes),
	}, nil
}

// Ref returns the boundary reference for a temporary driver.
func (t *Temporary) Ref() Ref {
	return Ref{DisplayName: t.Name, Source: SourceTemporary, SourceID: t.ID}
}

// ExternalRef returns the boundary reference for an external roster name.
func ExternalRef(name string) Ref {
	return Ref{DisplayName: strings.TrimSpace(name), Source: SourceExternal}
}
