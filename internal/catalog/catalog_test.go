package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chemcomp/internal/composition"
	"github.com/roach88/chemcomp/internal/periodic"
)

// createTestCatalog opens a catalog in a temp directory.
func createTestCatalog(t *testing.T, opts ...Option) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "test.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func mustFormula(t *testing.T, formula string) composition.Composition {
	t.Helper()
	c, err := composition.FromFormula(formula)
	require.NoError(t, err)
	return c
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	c, err := Open(path)
	require.NoError(t, err)
	_, err = c.Put(ctx, "salt", mustFormula(t, "NaCl"))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	for i := 0; i < 3; i++ {
		c, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, c.Close())
	}

	c, err = Open(path)
	require.NoError(t, err)
	defer c.Close()

	v, err := c.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, v)

	entry, err := c.Get(ctx, "salt")
	require.NoError(t, err)
	assert.Equal(t, "ClNa", entry.Formula)
}

func TestOpen_MigratesVersionZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	// A catalog written before species_key existed
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO compositions
		(label, id, counts, formula, hill_formula, species_hex, natoms, nspecies)
		VALUES ('water', 'legacy', '{"H":2,"O":1}', 'H2O', 'H2O', '0x801', 3, 2)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	c, err := Open(path, WithLogger(logger))
	require.NoError(t, err)
	defer c.Close()

	v, err := c.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Contains(t, logs.String(), "catalog migrated")

	// Empty species_key is recomputed from the stored counts
	entry, err := c.Get(context.Background(), "water")
	require.NoError(t, err)
	assert.Equal(t, mustFormula(t, "H2O").SpeciesKey(), entry.SpeciesKey)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}

func TestClose_Nil(t *testing.T) {
	c := &Catalog{}
	assert.NoError(t, c.Close())
}

func TestPutAndGet(t *testing.T) {
	c := createTestCatalog(t)
	ctx := context.Background()

	ybco := mustFormula(t, "YBa2Cu3O7")
	entry, err := c.Put(ctx, "ybco", ybco)
	require.NoError(t, err)

	assert.Equal(t, int64(1), entry.Seq)
	assert.Equal(t, "ybco", entry.Label)
	assert.Equal(t, ybco.ID(), entry.ID)
	assert.Equal(t, "Ba2Cu3O7Y", entry.Formula)
	assert.Equal(t, "Ba2Cu3O7Y", entry.HillFormula)
	assert.Equal(t, "0x38271d08", entry.SpeciesHex)
	assert.Equal(t, ybco.SpeciesKey(), entry.SpeciesKey)
	assert.Equal(t, 13, entry.NAtoms)
	assert.Equal(t, 4, entry.NSpecies)
	assert.True(t, entry.Composition.Equal(ybco))

	got, err := c.Get(ctx, "ybco")
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestPutIdempotent(t *testing.T) {
	c := createTestCatalog(t)
	ctx := context.Background()

	first, err := c.Put(ctx, "salt", mustFormula(t, "NaCl"))
	require.NoError(t, err)
	second, err := c.Put(ctx, "salt", mustFormula(t, "ClNa"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	entries, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPutLabelConflict(t *testing.T) {
	c := createTestCatalog(t)
	ctx := context.Background()

	_, err := c.Put(ctx, "salt", mustFormula(t, "NaCl"))
	require.NoError(t, err)

	_, err = c.Put(ctx, "salt", mustFormula(t, "Na2Cl2"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLabelConflict)

	entry, err := c.Get(ctx, "salt")
	require.NoError(t, err)
	assert.Equal(t, 2, entry.NAtoms)
}

func TestPutEmptyLabel(t *testing.T) {
	c := createTestCatalog(t)
	_, err := c.Put(context.Background(), "  ", mustFormula(t, "NaCl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label is required")
}

func TestPutEmptyComposition(t *testing.T) {
	c := createTestCatalog(t)
	entry, err := c.Put(context.Background(), "vacuum", composition.Empty())
	require.NoError(t, err)

	assert.Equal(t, "", entry.Formula)
	assert.Equal(t, "0x0", entry.SpeciesHex)
	assert.Equal(t, 0, entry.NAtoms)
}

func TestGetNotFound(t *testing.T) {
	c := createTestCatalog(t)
	_, err := c.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	c := createTestCatalog(t)
	ctx := context.Background()

	_, err := c.Put(ctx, "salt", mustFormula(t, "NaCl"))
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "salt"))
	_, err = c.Get(ctx, "salt")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, c.Delete(ctx, "salt"), ErrNotFound)
}

func seedCatalog(t *testing.T, c *Catalog) {
	t.Helper()
	ctx := context.Background()
	for _, e := range []struct{ label, formula string }{
		{"ybco-double", "Y2Ba4Cu6O14"},
		{"salt", "NaCl"},
		{"ybco", "YBa2Cu3O7"},
		{"salt-dimer", "Na2Cl2"},
		{"water", "H2O"},
	} {
		_, err := c.Put(ctx, e.label, mustFormula(t, e.formula))
		require.NoError(t, err)
	}
}

func labels(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label
	}
	return out
}

func TestList_DeterministicOrder(t *testing.T) {
	c := createTestCatalog(t)
	seedCatalog(t, c)

	entries, err := c.List(context.Background())
	require.NoError(t, err)

	// formula, then label
	assert.Equal(t, []string{"ybco", "ybco-double", "salt", "salt-dimer", "water"}, labels(entries))
}

func TestList_Empty(t *testing.T) {
	c := createTestCatalog(t)
	entries, err := c.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestFindByFormula(t *testing.T) {
	c := createTestCatalog(t)
	seedCatalog(t, c)
	ctx := context.Background()

	entries, err := c.FindByFormula(ctx, "Cl2Na2")
	require.NoError(t, err)
	assert.Equal(t, []string{"salt", "salt-dimer"}, labels(entries))

	entries, err = c.FindByFormula(ctx, "KCl")
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = c.FindByFormula(ctx, "Xx")
	require.Error(t, err)
	assert.True(t, composition.IsValidationError(err))
}

func TestFindBySpecies(t *testing.T) {
	c := createTestCatalog(t)
	seedCatalog(t, c)
	ctx := context.Background()

	for _, hex := range []string{"0x38271d08", "0X38271D08", "38271d08", "0x0038271d08"} {
		entries, err := c.FindBySpecies(ctx, hex)
		require.NoError(t, err, hex)
		assert.Equal(t, []string{"ybco", "ybco-double"}, labels(entries), hex)
	}

	_, err := c.FindBySpecies(ctx, "0xnothex")
	require.Error(t, err)
	assert.True(t, composition.IsInvalidArgument(err))
}

func TestFindBySpeciesKey(t *testing.T) {
	c := createTestCatalog(t)
	seedCatalog(t, c)

	entries, err := c.FindBySpeciesKey(context.Background(), mustFormula(t, "ClNa").SpeciesKey())
	require.NoError(t, err)
	assert.Equal(t, []string{"salt", "salt-dimer"}, labels(entries))
}

func TestFindByID(t *testing.T) {
	c := createTestCatalog(t)
	seedCatalog(t, c)
	ctx := context.Background()

	_, err := c.Put(ctx, "salt-again", mustFormula(t, "ClNa"))
	require.NoError(t, err)

	entries, err := c.FindByID(ctx, mustFormula(t, "NaCl").ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"salt", "salt-again"}, labels(entries))
}

func TestWithRegistry(t *testing.T) {
	table, err := periodic.NewTable([]periodic.Element{
		{Symbol: "H", Number: 1},
		{Symbol: "Uuo", Number: 118},
	})
	require.NoError(t, err)

	c := createTestCatalog(t, WithRegistry(table))
	ctx := context.Background()

	comp, err := composition.FromFormula("Uuo2H", composition.WithRegistry(table))
	require.NoError(t, err)

	entry, err := c.Put(ctx, "hypothetical", comp)
	require.NoError(t, err)
	assert.Equal(t, "0x7601", entry.SpeciesHex)

	// O is not in this catalog's table
	_, err = c.Put(ctx, "water", mustFormula(t, "H2O"))
	require.Error(t, err)
	assert.True(t, composition.IsValidationError(err))
}

func TestGet_RevalidatesStoredCounts(t *testing.T) {
	c := createTestCatalog(t)
	ctx := context.Background()

	_, err := c.Put(ctx, "salt", mustFormula(t, "NaCl"))
	require.NoError(t, err)

	// Tamper with the row outside the package API
	_, err = c.db.Exec(`UPDATE compositions SET counts = '{"Na":-1}' WHERE label = 'salt'`)
	require.NoError(t, err)

	_, err = c.Get(ctx, "salt")
	require.Error(t, err)
	assert.True(t, composition.IsValidationError(err))
}

func TestPut_LogsAtDebug(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := createTestCatalog(t, WithLogger(logger))
	_, err := c.Put(context.Background(), "salt", mustFormula(t, "NaCl"))
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "catalog entry stored")
	assert.Contains(t, logs.String(), "label=salt")
}
