package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/chemcomp/internal/composition"
)

var (
	// ErrNotFound is returned when no entry has the requested label.
	ErrNotFound = errors.New("catalog: entry not found")

	// ErrLabelConflict is returned when a label is already bound to a
	// different composition.
	ErrLabelConflict = errors.New("catalog: label already used by a different composition")
)

// Entry is one catalogued composition with its derived keys.
type Entry struct {
	Seq         int64                   `json:"seq"`
	Label       string                  `json:"label"`
	ID          string                  `json:"id"`
	Composition composition.Composition `json:"composition"`
	Formula     string                  `json:"formula"`
	HillFormula string                  `json:"hill_formula"`
	SpeciesHex  string                  `json:"species_hex"`
	SpeciesKey  uuid.UUID               `json:"species_key"`
	NAtoms      int                     `json:"natoms"`
	NSpecies    int                     `json:"nspecies"`
}

const entryColumns = `seq, label, id, counts, formula, hill_formula, species_hex, species_key, natoms, nspecies`

// Put stores c under label.
// Uses ON CONFLICT(label) DO NOTHING for idempotency: storing the same
// composition under the same label twice is a no-op. Storing a different
// composition under an existing label returns ErrLabelConflict.
func (c *Catalog) Put(ctx context.Context, label string, comp composition.Composition) (Entry, error) {
	if strings.TrimSpace(label) == "" {
		return Entry{}, fmt.Errorf("put entry: label is required")
	}

	// Re-validate against this catalog's registry
	comp, err := composition.FromCanonical(comp.MarshalCanonical(), composition.WithRegistry(c.registry))
	if err != nil {
		return Entry{}, fmt.Errorf("put entry %q: %w", label, err)
	}

	id := comp.ID()
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO compositions
		(label, id, counts, formula, hill_formula, species_hex, species_key, natoms, nspecies)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(label) DO NOTHING
	`,
		label,
		id,
		string(comp.MarshalCanonical()),
		comp.Formula(),
		comp.SortedFormula(composition.OrderHill, false),
		comp.SpeciesHex(),
		comp.SpeciesKey().String(),
		comp.NAtoms(),
		comp.Len(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("put entry %q: %w", label, err)
	}

	entry, err := c.Get(ctx, label)
	if err != nil {
		return Entry{}, err
	}
	if entry.ID != id {
		return Entry{}, fmt.Errorf("put entry %q: %w", label, ErrLabelConflict)
	}

	c.logger.Debug("catalog entry stored",
		"label", label,
		"formula", entry.Formula,
		"id", id,
	)
	return entry, nil
}

// Get returns the entry stored under label, or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, label string) (Entry, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM compositions
		WHERE label = ?
	`, label)

	entry, err := c.scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("get entry %q: %w", label, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get entry %q: %w", label, err)
	}
	return entry, nil
}

// Delete removes the entry stored under label, or returns ErrNotFound.
func (c *Catalog) Delete(ctx context.Context, label string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM compositions WHERE label = ?`, label)
	if err != nil {
		return fmt.Errorf("delete entry %q: %w", label, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry %q: %w", label, err)
	}
	if n == 0 {
		return fmt.Errorf("delete entry %q: %w", label, ErrNotFound)
	}
	return nil
}

// List returns every entry.
// Returns an empty slice (not nil) when the catalog is empty.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	return c.queryEntries(ctx, "list entries", `1 = 1`)
}

// FindByID returns entries with exactly the same counts as comp.
func (c *Catalog) FindByID(ctx context.Context, id string) ([]Entry, error) {
	return c.queryEntries(ctx, "find by id", `id = ?`, id)
}

// FindByFormula returns entries whose reduced formula matches formula.
// The argument is parsed and reduced first, so "Na2Cl2" finds NaCl.
func (c *Catalog) FindByFormula(ctx context.Context, formula string) ([]Entry, error) {
	comp, err := composition.FromFormula(formula, composition.WithRegistry(c.registry))
	if err != nil {
		return nil, fmt.Errorf("find by formula: %w", err)
	}
	return c.queryEntries(ctx, "find by formula", `formula = ?`, comp.Formula())
}

// FindBySpecies returns entries over the same species set as the given
// species hex, regardless of counts. The hex is normalized through
// composition.DecodeHex, so "0X38271D08" and "38271d08" are accepted.
func (c *Catalog) FindBySpecies(ctx context.Context, speciesHex string) ([]Entry, error) {
	hex, err := normalizeHex(speciesHex)
	if err != nil {
		return nil, fmt.Errorf("find by species: %w", err)
	}
	return c.queryEntries(ctx, "find by species", `species_hex = ?`, hex)
}

// FindBySpeciesKey returns entries whose species set hashes to key.
func (c *Catalog) FindBySpeciesKey(ctx context.Context, key uuid.UUID) ([]Entry, error) {
	return c.queryEntries(ctx, "find by species key", `species_key = ?`, key.String())
}

// normalizeHex validates a species hex and returns its stored form.
func normalizeHex(s string) (string, error) {
	if _, err := composition.DecodeHex(s); err != nil {
		return "", err
	}
	digits := strings.ToLower(strings.TrimSpace(s))
	digits = strings.TrimPrefix(digits, "0x")
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}
	return "0x" + digits, nil
}

// queryEntries runs a filtered select with deterministic ordering:
// ORDER BY formula, label COLLATE BINARY.
func (c *Catalog) queryEntries(ctx context.Context, op, where string, args ...any) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM compositions
		WHERE `+where+`
		ORDER BY formula COLLATE BINARY ASC, label COLLATE BINARY ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		entry, err := c.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}
	return entries, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry reads one row and rebuilds the composition from its
// canonical JSON.
func (c *Catalog) scanEntry(row rowScanner) (Entry, error) {
	var (
		e          Entry
		counts     string
		speciesKey string
	)
	err := row.Scan(
		&e.Seq,
		&e.Label,
		&e.ID,
		&counts,
		&e.Formula,
		&e.HillFormula,
		&e.SpeciesHex,
		&speciesKey,
		&e.NAtoms,
		&e.NSpecies,
	)
	if err != nil {
		return Entry{}, err
	}

	e.Composition, err = composition.FromCanonical([]byte(counts), composition.WithRegistry(c.registry))
	if err != nil {
		return Entry{}, fmt.Errorf("decode counts for %q: %w", e.Label, err)
	}

	if speciesKey != "" {
		e.SpeciesKey, err = uuid.Parse(speciesKey)
		if err != nil {
			return Entry{}, fmt.Errorf("decode species key for %q: %w", e.Label, err)
		}
	} else {
		e.SpeciesKey = e.Composition.SpeciesKey()
	}
	return e, nil
}
