// Package kodb queries the local annotation database: for each matched
// protein id it returns the stored annotation row, including the KO
// number when one is known. The database is read-only for the lifetime
// of a run and safe to share across concurrently filtered entities.
package kodb

import (
	"context"
	"database/sql"
	"path/filepath"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/bioseqlab/kanno/internal/model"
)

// Querier abstracts annotation lookups for testing.
type Querier interface {
	// Lookup resolves hits against the given source table. Every returned
	// record keeps the query id of the hit that produced it and carries
	// sourceTag in its Database field. Hits whose match id is unknown to
	// the database are simply absent from the result.
	Lookup(ctx context.Context, sourceTag string, hits []model.Hit) ([]model.AnnotationRecord, error)
	// KOProduct returns the product description for a KO number, or ""
	// when the KO is not listed.
	KOProduct(ctx context.Context, ko string) (string, error)
	Close() error
}

// Client is the sqlite-backed Querier.
type Client struct {
	db *sql.DB
}

var _ Querier = (*Client)(nil)

// DefaultFile is the annotation database file name under the database
// directory.
const DefaultFile = "kanno.db"

// Open opens the annotation database under dbdir read-only.
func Open(dbdir string) (*Client, error) {
	path := filepath.Join(dbdir, DefaultFile)
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, eris.Wrapf(err, "kodb: open %s", path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, eris.Wrapf(err, "kodb: ping %s", path)
	}
	return &Client{db: db}, nil
}

// NewFromDB wraps an existing database handle. Used by tests and by the
// database build tooling; the client takes ownership of the handle.
func NewFromDB(db *sql.DB) *Client {
	return &Client{db: db}
}

func (c *Client) Close() error { return c.db.Close() }

// sourceTable maps a stage's source tag onto its annotation table. Tags
// and tables are fixed at database build time.
func sourceTable(tag string) (string, bool) {
	switch tag {
	case "swissprot", "refseq", "trembl":
		return tag, true
	}
	return "", false
}

func (c *Client) Lookup(ctx context.Context, sourceTag string, hits []model.Hit) ([]model.AnnotationRecord, error) {
	table, ok := sourceTable(sourceTag)
	if !ok {
		return nil, eris.Errorf("kodb: unknown source tag %q", sourceTag)
	}

	stmt, err := c.db.PrepareContext(ctx,
		`SELECT protein_id, product, ko_number, ko_product, taxonomy, function, compartment, process
		 FROM `+table+` WHERE protein_id = ?`)
	if err != nil {
		return nil, eris.Wrapf(err, "kodb: prepare lookup %s", table)
	}
	defer stmt.Close()

	var records []model.AnnotationRecord
	for _, h := range hits {
		rec, err := scanOne(ctx, stmt, h)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		rec.Database = sourceTag
		records = append(records, *rec)
	}
	return records, nil
}

func scanOne(ctx context.Context, stmt *sql.Stmt, h model.Hit) (*model.AnnotationRecord, error) {
	row := stmt.QueryRowContext(ctx, h.MatchID)

	var r model.AnnotationRecord
	var ko, koProduct, taxonomy, function, compartment, process sql.NullString
	err := row.Scan(&r.ProteinID, &r.Product, &ko, &koProduct, &taxonomy, &function, &compartment, &process)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "kodb: scan %s", h.MatchID)
	}

	r.QueryID = h.QueryID
	r.KO = ko.String
	r.KOProduct = koProduct.String
	r.Taxonomy = taxonomy.String
	r.Function = function.String
	r.Compartment = compartment.String
	r.Process = process.String
	return &r, nil
}

func (c *Client) KOProduct(ctx context.Context, ko string) (string, error) {
	row := c.db.QueryRowContext(ctx, `SELECT product FROM ko_list WHERE ko_number = ?`, ko)
	var product string
	err := row.Scan(&product)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrapf(err, "kodb: ko product %s", ko)
	}
	return product, nil
}
