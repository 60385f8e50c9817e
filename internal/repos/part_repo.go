package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"partsdesk/internal/domain"
)

// PartRepo is the inventory ledger. Every stock mutation goes through the
// guarded statements here; nothing else in the codebase writes parts.qty.
type PartRepo struct{ db *sqlx.DB }

func NewPartRepo(db *sqlx.DB) *PartRepo { return &PartRepo{db: db} }

// Get returns a part regardless of visibility (admin use).
func (r *PartRepo) Get(partID string) (*domain.Part, error) {
	var p domain.Part
	err := r.db.Get(&p, `
		SELECT id, name, description, selling_price, buying_price, qty,
		       is_public, is_archived, created_at, COALESCE(updated_at,'') AS updated_at
		FROM parts WHERE id = ?
	`, partID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetForSale fetches the authoritative price/name for an online order line.
// It runs on the caller's transaction handle so the snapshot is consistent
// with the reservation made in the same transaction.
func (r *PartRepo) GetForSale(q sqlx.Queryer, partID string) (*domain.Part, error) {
	var p domain.Part
	err := sqlx.Get(q, &p, `
		SELECT id, name, description, selling_price, buying_price, qty,
		       is_public, is_archived, created_at, COALESCE(updated_at,'') AS updated_at
		FROM parts WHERE id = ? AND is_public = 1 AND is_archived = 0
	`, partID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.PartUnavailableError{PartID: partID}
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Reserve atomically deducts stock for one order line. The single conditional
// UPDATE is the concurrency guard: when two orders race for the last unit,
// only one statement can still match the qty >= ? predicate, so the loser
// sees zero rows affected and the whole placement aborts.
func (r *PartRepo) Reserve(q sqlx.Ext, partID string, qty int) error {
	res, err := q.Exec(`
		UPDATE parts
		SET qty = qty - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_public = 1 AND is_archived = 0 AND qty >= ?
	`, qty, partID, qty)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	// Zero rows: tell the caller whether the part is gone or just short.
	var p struct {
		Qty        int  `db:"qty"`
		IsPublic   bool `db:"is_public"`
		IsArchived bool `db:"is_archived"`
	}
	err = sqlx.Get(q, &p, `SELECT qty, is_public, is_archived FROM parts WHERE id = ?`, partID)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.PartUnavailableError{PartID: partID}
	}
	if err != nil {
		return err
	}
	if !p.IsPublic || p.IsArchived {
		return &domain.PartUnavailableError{PartID: partID}
	}
	return &domain.InsufficientStockError{PartID: partID, Requested: qty}
}

// Release puts a reservation's units back (cancellation restock). It is not
// idempotent; the lifecycle's cancel guard ensures at most one call per
// reservation.
func (r *PartRepo) Release(q sqlx.Ext, partID string, qty int) error {
	_, err := q.Exec(`
		UPDATE parts SET qty = qty + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, qty, partID)
	return err
}

// Qty returns current stock for a part.
func (r *PartRepo) Qty(partID string) (int, error) {
	var qty int
	err := r.db.Get(&qty, `SELECT qty FROM parts WHERE id = ?`, partID)
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// AddStock is the manual stock-in adjustment.
func (r *PartRepo) AddStock(partID string, by int) error {
	res, err := r.db.Exec(`
		UPDATE parts SET qty = qty + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, by, partID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.PartUnavailableError{PartID: partID}
	}
	return nil
}

// DeductStock is the manual stock-out adjustment. Same conditional-update
// discipline as Reserve; a prior read is never trusted.
func (r *PartRepo) DeductStock(partID string, by int) error {
	res, err := r.db.Exec(`
		UPDATE parts SET qty = qty - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND qty >= ?
	`, by, partID, by)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.db.Get(&exists, `SELECT COUNT(*) FROM parts WHERE id = ?`, partID); err != nil {
			return err
		}
		if exists == 0 {
			return &domain.PartUnavailableError{PartID: partID}
		}
		return &domain.InsufficientStockError{PartID: partID, Requested: by}
	}
	return nil
}

// ListAll returns every part for the admin inventory view.
func (r *PartRepo) ListAll() ([]domain.Part, error) {
	var parts []domain.Part
	err := r.db.Select(&parts, `
		SELECT id, name, description, selling_price, buying_price, qty,
		       is_public, is_archived, created_at, COALESCE(updated_at,'') AS updated_at
		FROM parts ORDER BY name
	`)
	return parts, err
}
