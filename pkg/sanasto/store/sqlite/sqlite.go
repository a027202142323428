package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	_ "modernc.org/sqlite"

	"github.com/cognicore/sanasto/pkg/sanasto/internalerr"
	"github.com/cognicore/sanasto/pkg/sanasto/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", internalerr.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS docs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT UNIQUE NOT NULL,
	title TEXT,
	published_at TEXT
);

CREATE TABLE IF NOT EXISTS doc_tokens (
	doc_id INTEGER NOT NULL,
	token TEXT NOT NULL,
	UNIQUE(doc_id, token),
	FOREIGN KEY(doc_id) REFERENCES docs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_doc_tokens_token ON doc_tokens(token);

CREATE TABLE IF NOT EXISTS doc_fields (
	doc_id INTEGER NOT NULL,
	field TEXT NOT NULL,
	lo_i INTEGER NOT NULL,
	lo_f REAL NOT NULL,
	hi_i INTEGER NOT NULL,
	hi_f REAL NOT NULL,
	is_float INTEGER NOT NULL DEFAULT 0,
	UNIQUE(doc_id, field),
	FOREIGN KEY(doc_id) REFERENCES docs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_doc_fields_field ON doc_fields(field, lo_i, hi_i);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertDoc inserts or updates a document
func (s *sqliteStore) UpsertDoc(ctx context.Context, d store.Doc) error {
	if d.URL == "" {
		return fmt.Errorf("%w: document URL is required", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO docs (url, title, published_at)
VALUES (?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	title=excluded.title,
	published_at=excluded.published_at
RETURNING id;
`

	var published string
	if !d.PublishedAt.IsZero() {
		published = d.PublishedAt.UTC().Format(time.RFC3339Nano)
	}

	var docID int64
	if err := tx.QueryRowContext(ctx, stmt, d.URL, d.Title, published).Scan(&docID); err != nil {
		return err
	}
	if _, err := store.DocID(docID); err != nil {
		return err
	}

	if err := replaceDocTokens(ctx, tx, docID, uniqueStrings(d.Tokens)); err != nil {
		return err
	}
	if err := replaceDocFields(ctx, tx, docID, d.Fields); err != nil {
		return err
	}

	return tx.Commit()
}

func replaceDocTokens(ctx context.Context, tx *sql.Tx, docID int64, tokens []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM doc_tokens WHERE doc_id=?`, docID); err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO doc_tokens (doc_id, token) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, tok := range tokens {
		if _, err := stmt.ExecContext(ctx, docID, tok); err != nil {
			return err
		}
	}
	return nil
}

func replaceDocFields(ctx context.Context, tx *sql.Tx, docID int64, fields map[string]store.Field) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM doc_fields WHERE doc_id=?`, docID); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO doc_fields (doc_id, field, lo_i, lo_f, hi_i, hi_f, is_float)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for name, f := range fields {
		if name == "" {
			continue
		}
		isFloat := f.Low.IsFloat || f.High.IsFloat
		if _, err := stmt.ExecContext(ctx, docID, name,
			f.Low.I, f.Low.Float64(), f.High.I, f.High.Float64(), isFloat); err != nil {
			return err
		}
	}
	return nil
}

// GetDoc retrieves a document by ID
func (s *sqliteStore) GetDoc(ctx context.Context, id int64) (store.Doc, error) {
	return s.loadDoc(ctx, id)
}

// GetDocByURL retrieves a document by URL
func (s *sqliteStore) GetDocByURL(ctx context.Context, url string) (store.Doc, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM docs WHERE url = ?`, url).Scan(&id)
	if err == sql.ErrNoRows {
		return store.Doc{}, false, nil
	}
	if err != nil {
		return store.Doc{}, false, err
	}

	doc, err := s.loadDoc(ctx, id)
	if err != nil {
		return store.Doc{}, false, err
	}
	return doc, true, nil
}

// GetDocsByTokens retrieves documents containing any of the given tokens
func (s *sqliteStore) GetDocsByTokens(ctx context.Context, tokens []string, limit int) ([]store.Doc, error) {
	unique := uniqueStrings(tokens)
	if len(unique) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(unique)), ",")

	args := make([]interface{}, 0, len(unique)+1)
	for _, tok := range unique {
		args = append(args, tok)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
SELECT DISTINCT d.id
FROM docs d
JOIN doc_tokens dt ON d.id = dt.doc_id
WHERE dt.token IN (%s)
ORDER BY d.published_at DESC
LIMIT ?;
`, placeholders)

	ids, err := s.loadIDs(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	results := make([]store.Doc, 0, len(ids))
	for _, id := range ids {
		doc, err := s.loadDoc(ctx, id)
		if err != nil {
			return nil, err
		}
		results = append(results, doc)
	}
	return results, nil
}

// DocSet returns the ids of documents matching f.
func (s *sqliteStore) DocSet(ctx context.Context, f store.Filter) (*roaring.Bitmap, error) {
	if f.Range == nil {
		return s.loadBitmap(ctx, `SELECT doc_id FROM doc_tokens WHERE token = ?`, f.Token)
	}
	where, args := rangeClause(*f.Range)
	return s.loadBitmap(ctx, `SELECT doc_id FROM doc_fields WHERE `+where, args...)
}

// RangeCount counts documents whose field overlaps q. The doc restriction
// is applied in memory on the matching id set.
func (s *sqliteStore) RangeCount(ctx context.Context, q store.RangeQuery) (int, error) {
	where, args := rangeClause(q)
	if q.Docs == nil {
		var n int
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT doc_id) FROM doc_fields WHERE `+where, args...).Scan(&n)
		return n, err
	}
	if q.Docs.IsEmpty() {
		return 0, nil
	}

	matched, err := s.loadBitmap(ctx, `SELECT doc_id FROM doc_fields WHERE `+where, args...)
	if err != nil {
		return 0, err
	}
	return int(matched.AndCardinality(q.Docs)), nil
}

// rangeClause builds the overlap condition for q. Integer bounds compare
// against the integer columns unless the stored value is a float.
func rangeClause(q store.RangeQuery) (string, []interface{}) {
	conds := []string{"field = ?"}
	args := []interface{}{q.Field}

	if q.Low != nil {
		op := ">="
		if !q.IncludeLower {
			op = ">"
		}
		conds = append(conds, column("hi", *q.Low)+" "+op+" ?")
		args = append(args, value(*q.Low))
	}
	if q.High != nil {
		op := "<="
		if !q.IncludeUpper {
			op = "<"
		}
		conds = append(conds, column("lo", *q.High)+" "+op+" ?")
		args = append(args, value(*q.High))
	}
	return strings.Join(conds, " AND "), args
}

func column(prefix string, bound store.Number) string {
	if bound.IsFloat {
		return prefix + "_f"
	}
	return "(CASE WHEN is_float THEN " + prefix + "_f ELSE " + prefix + "_i END)"
}

func value(n store.Number) interface{} {
	if n.IsFloat {
		return n.F
	}
	return n.I
}

func (s *sqliteStore) loadBitmap(ctx context.Context, query string, args ...interface{}) (*roaring.Bitmap, error) {
	ids, err := s.loadIDs(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	bm := roaring.New()
	for _, id := range ids {
		member, err := store.DocID(id)
		if err != nil {
			return nil, err
		}
		bm.Add(member)
	}
	return bm, nil
}

func (s *sqliteStore) loadIDs(ctx context.Context, query string, args ...interface{}) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *sqliteStore) loadDoc(ctx context.Context, id int64) (store.Doc, error) {
	var (
		doc       store.Doc
		title     sql.NullString
		published sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, url, title, published_at
FROM docs
WHERE id = ?;
`, id).Scan(&doc.ID, &doc.URL, &title, &published)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Doc{}, fmt.Errorf("doc %d: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Doc{}, err
	}
	doc.Title = title.String

	if published.String != "" {
		if parsed, perr := time.Parse(time.RFC3339Nano, published.String); perr == nil {
			doc.PublishedAt = parsed
		}
	}

	doc.Tokens, err = s.loadStringColumn(ctx, `SELECT token FROM doc_tokens WHERE doc_id=?`, id)
	if err != nil {
		return store.Doc{}, err
	}
	doc.Fields, err = s.loadFields(ctx, id)
	if err != nil {
		return store.Doc{}, err
	}

	return doc, nil
}

func (s *sqliteStore) loadStringColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var val string
		if err := rows.Scan(&val); err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, rows.Err()
}

func (s *sqliteStore) loadFields(ctx context.Context, docID int64) (map[string]store.Field, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT field, lo_i, lo_f, hi_i, hi_f, is_float FROM doc_fields WHERE doc_id=?`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields map[string]store.Field
	for rows.Next() {
		var (
			name     string
			loI, hiI int64
			loF, hiF float64
			isFloat  bool
		)
		if err := rows.Scan(&name, &loI, &loF, &hiI, &hiF, &isFloat); err != nil {
			return nil, err
		}
		if fields == nil {
			fields = make(map[string]store.Field)
		}
		if isFloat {
			fields[name] = store.Interval(store.Float(loF), store.Float(hiF))
		} else {
			fields[name] = store.Interval(store.Int(loI), store.Int(hiI))
		}
	}
	return fields, rows.Err()
}

func uniqueStrings(in []string) []string {
	set := make(map[string]struct{}, len(in))
	var out []string
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
