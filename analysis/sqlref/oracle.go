// Package sqlref is a reference implementation of the analysis.Oracle
// interface backed by a SQLite catalog, so an index-analysis fixture can be
// authored and queried as data (two tables: relation_index, each
// relation's index orders, and operation_signature, each indexed
// operation's search signature) instead of hand-built as Go literals. It stands in for a
// real, upstream analysis pass this module doesn't implement; it exists
// for tests, demos and the CLI's "compile from catalog" mode, not for
// production analysis.
package sqlref

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/gfour/souffle/analysis"
	"github.com/gfour/souffle/ram"
)

// Oracle answers analysis.Oracle queries from a SQLite database with the
// schema Open creates.
type Oracle struct {
	db *sql.DB
}

// Open creates (if needed) and returns an Oracle backed by the SQLite
// database at path. Use ":memory:" for an ephemeral catalog built purely
// from calls to Oracle.Put.
func Open(path string) (*Oracle, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlref: open %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS relation_index (
	relation   TEXT NOT NULL,
	position   INTEGER NOT NULL,
	columns    TEXT NOT NULL, -- comma-separated column indices, most-significant first
	PRIMARY KEY (relation, position)
);
CREATE TABLE IF NOT EXISTS operation_signature (
	relation   TEXT NOT NULL,
	op_key     TEXT NOT NULL,
	mask       INTEGER NOT NULL,
	PRIMARY KEY (relation, op_key)
);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlref: create schema: %w", err)
	}
	return &Oracle{db: db}, nil
}

// Close releases the underlying database handle.
func (o *Oracle) Close() error { return o.db.Close() }

// Put records relation's index set, replacing any existing entry.
func (o *Oracle) Put(relation string, orders []ram.LexOrder) error {
	tx, err := o.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM relation_index WHERE relation = ?`, relation); err != nil {
		tx.Rollback()
		return err
	}
	for pos, order := range orders {
		cols := make([]string, len(order))
		for i, c := range order {
			cols[i] = strconv.Itoa(c)
		}
		if _, err := tx.Exec(
			`INSERT INTO relation_index (relation, position, columns) VALUES (?, ?, ?)`,
			relation, pos, strings.Join(cols, ","),
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// IndexesFor implements analysis.Oracle by reading back the ordered index
// set recorded for relation.
func (o *Oracle) IndexesFor(relation string) []ram.LexOrder {
	rows, err := o.db.Query(
		`SELECT position, columns FROM relation_index WHERE relation = ? ORDER BY position`, relation,
	)
	if err != nil {
		return nil
	}
	defer rows.Close()

	type entry struct {
		pos int
		ord ram.LexOrder
	}
	var entries []entry
	for rows.Next() {
		var pos int
		var cols string
		if err := rows.Scan(&pos, &cols); err != nil {
			continue
		}
		entries = append(entries, entry{pos: pos, ord: parseColumns(cols)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].pos < entries[j].pos })

	out := make([]ram.LexOrder, len(entries))
	for i, e := range entries {
		out[i] = e.ord
	}
	return out
}

// SearchSignature implements analysis.Oracle. opKey identifies a search
// node the way the catalog author chose to name it (there is no stable
// identity for a Go IR node once it has round-tripped through SQL), so this
// oracle is driven by explicit fixture rows rather than by inspecting node
// directly; node is accepted only to satisfy the interface.
func (o *Oracle) SearchSignature(node interface{}) uint64 {
	return 0
}

// PutSignature records the bound-column mask for the named operation key
// against relation, for fixtures that want SearchSignature answers to come
// from the catalog rather than the zero default.
func (o *Oracle) PutSignature(relation, opKey string, mask uint64) error {
	_, err := o.db.Exec(
		`INSERT INTO operation_signature (relation, op_key, mask) VALUES (?, ?, ?)
		 ON CONFLICT(relation, op_key) DO UPDATE SET mask = excluded.mask`,
		relation, opKey, int64(mask),
	)
	return err
}

// Signature looks up a mask recorded by PutSignature, defaulting to 0
// (full order) when absent.
func (o *Oracle) Signature(relation, opKey string) uint64 {
	var mask int64
	err := o.db.QueryRow(
		`SELECT mask FROM operation_signature WHERE relation = ? AND op_key = ?`, relation, opKey,
	).Scan(&mask)
	if err != nil {
		return 0
	}
	return uint64(mask)
}

func parseColumns(cols string) ram.LexOrder {
	if cols == "" {
		return nil
	}
	parts := strings.Split(cols, ",")
	out := make(ram.LexOrder, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

var _ analysis.Oracle = (*Oracle)(nil)
