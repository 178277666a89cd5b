package kodb

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioseqlab/kanno/internal/model"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// One connection, or each pooled conn sees its own empty memory db.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE swissprot (
			protein_id  TEXT PRIMARY KEY,
			product     TEXT NOT NULL,
			ko_number   TEXT,
			ko_product  TEXT,
			taxonomy    TEXT,
			function    TEXT,
			compartment TEXT,
			process     TEXT
		);
		CREATE TABLE refseq (
			protein_id  TEXT PRIMARY KEY,
			product     TEXT NOT NULL,
			ko_number   TEXT,
			ko_product  TEXT,
			taxonomy    TEXT,
			function    TEXT,
			compartment TEXT,
			process     TEXT
		);
		CREATE TABLE ko_list (
			ko_number TEXT PRIMARY KEY,
			product   TEXT NOT NULL
		);

		INSERT INTO swissprot VALUES
			('P11111', 'alcohol dehydrogenase', 'K00001', 'alcohol dehydrogenase [EC:1.1.1.1]',
			 'Bacteria', 'oxidoreductase activity', 'cytoplasm', 'fermentation'),
			('P22222', 'uncharacterized protein', NULL, NULL, NULL, NULL, NULL, NULL);
		INSERT INTO ko_list VALUES ('K00001', 'alcohol dehydrogenase [EC:1.1.1.1]');
	`)
	require.NoError(t, err)

	c := NewFromDB(db)
	t.Cleanup(func() { c.Close() }) //nolint:errcheck
	return c
}

func TestLookup(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	hits := []model.Hit{
		{QueryID: "g1", MatchID: "P11111"},
		{QueryID: "g2", MatchID: "P22222"},
		{QueryID: "g3", MatchID: "MISSING"},
	}
	records, err := c.Lookup(ctx, "swissprot", hits)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "g1", records[0].QueryID)
	assert.Equal(t, "P11111", records[0].ProteinID)
	assert.Equal(t, "K00001", records[0].KO)
	assert.Equal(t, "swissprot", records[0].Database)
	assert.True(t, records[0].Resolved())

	// Row without a KO number still comes back, unresolved.
	assert.Equal(t, "g2", records[1].QueryID)
	assert.Empty(t, records[1].KO)
	assert.False(t, records[1].Resolved())
}

func TestLookup_UnknownSourceTag(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Lookup(context.Background(), "kofam", []model.Hit{{QueryID: "g1", MatchID: "K00001"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source tag")
}

func TestLookup_EmptyTable(t *testing.T) {
	c := newTestClient(t)

	records, err := c.Lookup(context.Background(), "refseq", []model.Hit{{QueryID: "g1", MatchID: "WP_1"}})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestKOProduct(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	product, err := c.KOProduct(ctx, "K00001")
	require.NoError(t, err)
	assert.Equal(t, "alcohol dehydrogenase [EC:1.1.1.1]", product)

	product, err = c.KOProduct(ctx, "K99999")
	require.NoError(t, err)
	assert.Empty(t, product)
}
