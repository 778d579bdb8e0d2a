package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/docmig/internal/doc"
)

// Document is a stored document row. Body is the document file in JSON,
// byte-for-byte what doc.Encode writes. Hash is the canonical content hash.
type Document struct {
	ID       string
	Name     string
	Revision int
	Body     []byte
	Hash     string
	Seq      int64
}

// Decode materialises the stored body.
func (d Document) Decode() (*doc.Domain, error) {
	dom, err := doc.Decode(bytes.NewReader(d.Body), doc.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("decode document %q: %w", d.ID, err)
	}
	return dom, nil
}

// NewDocument encodes dom into a row keyed by id.
//
// The body must round-trip every string unchanged, so it is the plain
// JSON encoding rather than the NFC-normalized snapshot.
func NewDocument(id string, dom *doc.Domain) (Document, error) {
	var buf bytes.Buffer
	if err := doc.Encode(&buf, dom, doc.FormatJSON); err != nil {
		return Document{}, fmt.Errorf("encode document %q: %w", id, err)
	}
	hash, err := doc.Hash(dom)
	if err != nil {
		return Document{}, err
	}
	return Document{
		ID:       id,
		Name:     dom.Name,
		Revision: dom.Revision(),
		Body:     buf.Bytes(),
		Hash:     hash,
	}, nil
}

// PutDocument inserts or replaces the row for d.ID and returns the seq
// assigned to the write.
func (s *Store) PutDocument(ctx context.Context, d Document) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("put document: begin tx: %w", err)
	}
	defer tx.Rollback()

	seq, err := putDocument(ctx, tx, d)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("put document: commit: %w", err)
	}
	return seq, nil
}

// SaveDomain snapshots dom and stores it under id.
func (s *Store) SaveDomain(ctx context.Context, id string, dom *doc.Domain) (Document, error) {
	d, err := NewDocument(id, dom)
	if err != nil {
		return Document{}, fmt.Errorf("save document: %w", err)
	}
	d.Seq, err = s.PutDocument(ctx, d)
	if err != nil {
		return Document{}, err
	}
	return d, nil
}

func putDocument(ctx context.Context, tx *sql.Tx, d Document) (int64, error) {
	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("put document: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, name, revision, body, hash, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			revision = excluded.revision,
			body = excluded.body,
			hash = excluded.hash,
			seq = excluded.seq
	`,
		d.ID,
		d.Name,
		d.Revision,
		string(d.Body),
		d.Hash,
		seq,
	)
	if err != nil {
		return 0, fmt.Errorf("put document %q: %w", d.ID, err)
	}
	return seq, nil
}

// nextSeq returns the next value of the logical clock shared by both
// tables.
func nextSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM (
			SELECT seq FROM documents
			UNION ALL
			SELECT seq FROM migration_runs
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}

// GetDocument retrieves a single document by ID.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) GetDocument(ctx context.Context, id string) (Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, revision, body, hash, seq
		FROM documents
		WHERE id = ?
	`, id)

	d, err := scanDocument(row)
	if err != nil {
		return Document{}, fmt.Errorf("get document %q: %w", id, err)
	}
	return d, nil
}

// LoadDomain retrieves and decodes the document stored under id.
func (s *Store) LoadDomain(ctx context.Context, id string) (*doc.Domain, error) {
	d, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.Decode()
}

// ListDocuments returns every stored document ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, revision, body, hash, seq
		FROM documents
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (Document, error) {
	var (
		d    Document
		body string
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Revision, &body, &d.Hash, &d.Seq); err != nil {
		return Document{}, fmt.Errorf("scan document: %w", err)
	}
	d.Body = []byte(body)
	return d, nil
}
