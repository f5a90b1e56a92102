package repository

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// TextUnitRepository stores embedded text units for pgvector-backed indexes.
type TextUnitRepository struct {
	db dbtx
	tx *TxRunner
}

func NewTextUnitRepository(pool *pgxpool.Pool) *TextUnitRepository {
	return &TextUnitRepository{db: pool, tx: NewTxRunner(pool)}
}

// InsertUnits writes all units of one index atomically. The slice position
// becomes the tie-break order for searches.
func (r *TextUnitRepository) InsertUnits(ctx context.Context, indexID string, units []domain.TextUnit, embeddings [][]float32) error {
	if len(units) != len(embeddings) {
		return fmt.Errorf("got %d units but %d embeddings", len(units), len(embeddings))
	}

	return r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i, u := range units {
			batch.Queue(
				`INSERT INTO text_units (index_id, position, unit_id, kind, subject, content, embedding)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				indexID, i, u.ID, string(u.Kind), u.Subject, u.Text, pgvector.NewVector(embeddings[i]),
			)
		}

		results := tx.SendBatch(ctx, batch)
		for i := range units {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to insert unit %s: %w", units[i].ID, err)
			}
		}
		return results.Close()
	})
}

// SearchByEmbedding returns the k units nearest by cosine distance. Ties are
// broken by insertion position.
func (r *TextUnitRepository) SearchByEmbedding(ctx context.Context, indexID string, embedding []float32, k int) ([]domain.TextUnit, error) {
	rows, err := r.db.Query(ctx,
		`SELECT unit_id, kind, subject, position, content
		 FROM text_units
		 WHERE index_id = $1
		 ORDER BY embedding <=> $2, position
		 LIMIT $3`,
		indexID, pgvector.NewVector(embedding), k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []domain.TextUnit
	for rows.Next() {
		var u domain.TextUnit
		var kind string
		if err := rows.Scan(&u.ID, &kind, &u.Subject, &u.Position, &u.Text); err != nil {
			return nil, err
		}
		u.Kind = domain.UnitKind(kind)
		units = append(units, u)
	}

	return units, rows.Err()
}

func (r *TextUnitRepository) DeleteIndex(ctx context.Context, indexID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM text_units WHERE index_id = $1`, indexID)
	return err
}

// CountUnits reports how many units are stored for an index.
func (r *TextUnitRepository) CountUnits(ctx context.Context, indexID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM text_units WHERE index_id = $1`, indexID).Scan(&n)
	return n, err
}
