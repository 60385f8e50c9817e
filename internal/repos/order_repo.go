package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"partsdesk/internal/domain"
)

// OrderRepo is the order record store. Line items are embedded: they are
// written once with the header and have no independent lifecycle.
type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `
	id, customer_name, customer_email, customer_phone,
	subtotal, shipping_fee, total, payment_method, delivery_method,
	ship_address, ship_city, ship_postal, include_labor, status,
	tracking_number, courier_name, is_archived,
	created_at, COALESCE(updated_at,'') AS updated_at`

// Create inserts the order header and its line items on the caller's
// transaction. Item position preserves the submitted order.
func (r *OrderRepo) Create(q sqlx.Ext, o *domain.Order, items []domain.OrderLineItem) error {
	_, err := q.Exec(`
	  INSERT INTO orders
	    (id, customer_name, customer_email, customer_phone,
	     subtotal, shipping_fee, total, payment_method, delivery_method,
	     ship_address, ship_city, ship_postal, include_labor, status, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, o.ID, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.Subtotal, o.ShippingFee, o.Total, o.PaymentMethod, o.DeliveryMethod,
		o.ShipAddress, o.ShipCity, o.ShipPostal, o.IncludeLabor, o.Status)
	if err != nil {
		return err
	}
	for i, it := range items {
		if _, err := q.Exec(`
		  INSERT INTO order_items(order_id, part_id, position, part_name, qty, unit_price)
		  VALUES(?,?,?,?,?,?)
		`, o.ID, it.PartID, i, it.PartName, it.Qty, it.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

// GetHeader loads one order header on the given handle.
func (r *OrderRepo) GetHeader(q sqlx.Queryer, orderID string) (domain.Order, error) {
	var o domain.Order
	err := sqlx.Get(q, &o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, err
}

// Items returns an order's line items in submission order.
func (r *OrderRepo) Items(q sqlx.Queryer, orderID string) ([]domain.OrderLineItem, error) {
	var items []domain.OrderLineItem
	err := sqlx.Select(q, &items, `
		SELECT order_id, part_id, position, part_name, qty, unit_price
		FROM order_items WHERE order_id = ? ORDER BY position
	`, orderID)
	return items, err
}

// Get loads a full order outside any transaction (read paths).
func (r *OrderRepo) Get(orderID string) (domain.Order, []domain.OrderLineItem, error) {
	o, err := r.GetHeader(r.db, orderID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	items, err := r.Items(r.db, orderID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	return o, items, nil
}

func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Order
	err := r.db.Select(&out, `
		SELECT `+orderCols+`
		FROM orders
		ORDER BY datetime(created_at) DESC
		LIMIT ?
	`, limit)
	return out, err
}

// SetStatus writes a new status on the caller's transaction.
func (r *OrderRepo) SetStatus(q sqlx.Ext, orderID string, status domain.OrderStatus) error {
	_, err := q.Exec(`
		UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, orderID)
	return err
}

// MarkCancelled flips an order to CANCELLED only if it is not already there.
// The conditional predicate is what makes repeated cancels a stock no-op:
// restock must only run when this reports a change.
func (r *OrderRepo) MarkCancelled(q sqlx.Ext, orderID string) (bool, error) {
	res, err := q.Exec(`
		UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status <> ?
	`, domain.StatusCancelled, orderID, domain.StatusCancelled)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SetTracking attaches courier details and moves the order to SHIPPED.
func (r *OrderRepo) SetTracking(q sqlx.Ext, orderID, trackingNumber, courierName string) error {
	_, err := q.Exec(`
		UPDATE orders
		SET tracking_number = ?, courier_name = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, trackingNumber, courierName, domain.StatusShipped, orderID)
	return err
}

// ToggleArchive flips the archival flag and returns the new value. Status is
// untouched; archival is orthogonal to the lifecycle.
func (r *OrderRepo) ToggleArchive(orderID string) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE orders SET is_archived = 1 - is_archived, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, orderID)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, domain.ErrOrderNotFound
	}
	var archived bool
	if err := r.db.Get(&archived, `SELECT is_archived FROM orders WHERE id = ?`, orderID); err != nil {
		return false, err
	}
	return archived, nil
}

// Delete removes an order outright (items cascade). The lifecycle service is
// responsible for the status guard.
func (r *OrderRepo) Delete(orderID string) error {
	res, err := r.db.Exec(`DELETE FROM orders WHERE id = ?`, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
