package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/riskbudget/pkg/id"
	"github.com/rustyeddy/riskbudget/risk"
)

// ExportType tags files written by Export.
const ExportType = "riskbudget_v1"

// Bundle is the import/export file. A bare JSON array of deals is also
// accepted on import.
type Bundle struct {
	Type       string                 `json:"type"`
	ExportedAt time.Time              `json:"exportedAt"`
	Settings   *risk.Settings         `json:"settings,omitempty"`
	Deals      []risk.Deal            `json:"deals"`
	Params     map[string]risk.Params `json:"params,omitempty"`
}

var ErrBadImport = errors.New("import: expected a JSON array of deals or an object with a deals array")

// ParseBundle decodes either import shape.
func ParseBundle(data []byte) (Bundle, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Bundle{}, ErrBadImport
	}

	if data[0] == '[' {
		var deals []risk.Deal
		if err := json.Unmarshal(data, &deals); err != nil {
			return Bundle{}, fmt.Errorf("%w: %v", ErrBadImport, err)
		}
		return Bundle{Deals: deals}, nil
	}

	var raw struct {
		Bundle
		Deals *[]risk.Deal `json:"deals"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrBadImport, err)
	}
	if raw.Deals == nil {
		return Bundle{}, ErrBadImport
	}
	b := raw.Bundle
	b.Deals = *raw.Deals
	return b, nil
}

// EnsureIDs gives every deal a unique ID. Params keyed by a replaced
// duplicate stay with the first deal that used the ID.
func EnsureIDs(deals []risk.Deal) []risk.Deal {
	out := make([]risk.Deal, len(deals))
	used := make(map[string]bool, len(deals))
	for i, d := range deals {
		if d.ID == "" || used[d.ID] {
			d.ID = id.New()
		}
		used[d.ID] = true
		out[i] = d
	}
	return out
}

// Import replaces the stored deals with the ones read from r. Settings and
// params are applied when the bundle carries them.
func Import(ctx context.Context, s Store, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read import: %w", err)
	}
	b, err := ParseBundle(data)
	if err != nil {
		return 0, err
	}

	deals := EnsureIDs(b.Deals)
	if err := s.ReplaceDeals(ctx, deals); err != nil {
		return 0, fmt.Errorf("replace deals: %w", err)
	}
	for dealID, p := range b.Params {
		if err := s.SaveParams(ctx, dealID, p); err != nil {
			return 0, err
		}
	}
	if b.Settings != nil {
		if err := s.SaveSettings(ctx, *b.Settings); err != nil {
			return 0, fmt.Errorf("save settings: %w", err)
		}
	}
	return len(deals), nil
}

// Export writes every deal, param and the settings as an indented bundle.
func Export(ctx context.Context, s Store, w io.Writer) error {
	deals, err := s.ListDeals(ctx)
	if err != nil {
		return err
	}
	params, err := s.LoadParams(ctx)
	if err != nil {
		return err
	}
	settings, err := s.LoadSettings(ctx)
	if err != nil {
		return err
	}

	b := Bundle{
		Type:       ExportType,
		ExportedAt: time.Now().UTC(),
		Settings:   &settings,
		Deals:      deals,
		Params:     params,
	}
	if b.Deals == nil {
		b.Deals = []risk.Deal{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}
