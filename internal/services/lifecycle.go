package services

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"partsdesk/internal/domain"
	"partsdesk/internal/repos"
)

// LifecycleService drives orders through the status state machine. Every
// transition with a balance-affecting side effect (restock) runs the status
// write and the side effect in one transaction; notifications queue only
// after commit and never fail the request.
type LifecycleService struct {
	db     *sqlx.DB
	Orders *repos.OrderRepo
	Parts  *repos.PartRepo
	Notify Notifier
}

func NewLifecycleService(db *sqlx.DB, orders *repos.OrderRepo, parts *repos.PartRepo, notify Notifier) *LifecycleService {
	return &LifecycleService{db: db, Orders: orders, Parts: parts, Notify: notify}
}

// ConfirmPayment moves PENDING or PENDING_PAYMENT to PROCESSING and sends the
// itemized receipt.
func (s *LifecycleService) ConfirmPayment(orderID string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	o, err := s.Orders.GetHeader(tx, orderID)
	if err != nil {
		return err
	}
	if o.Status != string(domain.StatusPending) && o.Status != string(domain.StatusPendingPayment) {
		return &domain.InvalidTransitionError{From: o.Status, To: string(domain.StatusProcessing)}
	}
	if err := s.Orders.SetStatus(tx, orderID, domain.StatusProcessing); err != nil {
		return err
	}
	items, err := s.Orders.Items(tx, orderID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	lines := make([]map[string]any, 0, len(items))
	for _, it := range items {
		lines = append(lines, map[string]any{
			"Name": it.PartName, "Qty": it.Qty, "UnitPrice": it.UnitPrice, "LineTotal": it.LineTotal(),
		})
	}
	s.Notify.Notify(EventPaymentConfirmed, o.CustomerEmail, map[string]any{
		"Name":        o.CustomerName,
		"OrderID":     o.ID,
		"Lines":       lines,
		"Subtotal":    o.Subtotal,
		"ShippingFee": o.ShippingFee,
		"Total":       o.Total,
	})
	return nil
}

// AssignTracking attaches courier details and ships the order. Both fields
// are mandatory; a partial assignment is rejected before anything is written.
func (s *LifecycleService) AssignTracking(orderID, trackingNumber, courierName string) error {
	trackingNumber = strings.TrimSpace(trackingNumber)
	courierName = strings.TrimSpace(courierName)
	if trackingNumber == "" || courierName == "" {
		return domain.Invalid("tracking number and courier name are both required")
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	o, err := s.Orders.GetHeader(tx, orderID)
	if err != nil {
		return err
	}
	if domain.OrderStatus(o.Status).Terminal() {
		return &domain.InvalidTransitionError{From: o.Status, To: string(domain.StatusShipped)}
	}
	if err := s.Orders.SetTracking(tx, orderID, trackingNumber, courierName); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.Notify.Notify(EventOrderShipped, o.CustomerEmail, map[string]any{
		"Name":           o.CustomerName,
		"OrderID":        o.ID,
		"TrackingNumber": trackingNumber,
		"CourierName":    courierName,
	})
	return nil
}

// Complete marks an order picked up or delivered. Pickup orders get the
// payment-received notification (cash collected at the counter); delivery
// orders were paid earlier in the flow, so none is sent.
func (s *LifecycleService) Complete(orderID string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	o, err := s.Orders.GetHeader(tx, orderID)
	if err != nil {
		return err
	}
	if domain.OrderStatus(o.Status).Terminal() {
		return &domain.InvalidTransitionError{From: o.Status, To: string(domain.StatusCompleted)}
	}
	if err := s.Orders.SetStatus(tx, orderID, domain.StatusCompleted); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if o.DeliveryMethod != string(domain.DeliverDelivery) {
		s.Notify.Notify(EventPaymentReceived, o.CustomerEmail, map[string]any{
			"Name":    o.CustomerName,
			"OrderID": o.ID,
			"Total":   o.Total,
		})
	}
	return nil
}

// Cancel moves any non-CANCELLED order to CANCELLED and restocks every line
// item exactly once. Cancelling an already-cancelled order is a no-op: the
// conditional status update reports no change, so restock never runs twice.
func (s *LifecycleService) Cancel(orderID string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := s.Orders.GetHeader(tx, orderID); err != nil {
		return err
	}
	changed, err := s.Orders.MarkCancelled(tx, orderID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	items, err := s.Orders.Items(tx, orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := s.Parts.Release(tx, it.PartID, it.Qty); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpdateStatus is the generic admin status endpoint. It routes to the guarded
// transition for the requested target.
func (s *LifecycleService) UpdateStatus(orderID, target string) error {
	switch domain.OrderStatus(strings.ToUpper(strings.TrimSpace(target))) {
	case domain.StatusProcessing:
		return s.ConfirmPayment(orderID)
	case domain.StatusShipped:
		// Shipping without courier details must go through AssignTracking;
		// allow the bare status change only when tracking is already on file.
		o, _, err := s.Orders.Get(orderID)
		if err != nil {
			return err
		}
		if !o.TrackingNumber.Valid || o.TrackingNumber.String == "" || !o.CourierName.Valid || o.CourierName.String == "" {
			return domain.Invalid("assign a tracking number and courier before marking shipped")
		}
		return s.AssignTracking(orderID, o.TrackingNumber.String, o.CourierName.String)
	case domain.StatusCompleted:
		return s.Complete(orderID)
	case domain.StatusCancelled:
		return s.Cancel(orderID)
	case domain.StatusPending, domain.StatusPendingPayment:
		o, _, err := s.Orders.Get(orderID)
		if err != nil {
			return err
		}
		return &domain.InvalidTransitionError{From: o.Status, To: target}
	default:
		return domain.Invalid("unknown status %q", target)
	}
}

// ToggleArchive flips the archival flag without touching status.
func (s *LifecycleService) ToggleArchive(orderID string) (bool, error) {
	return s.Orders.ToggleArchive(orderID)
}

// Delete removes an order outright. Statuses that denote confirmed payment or
// fulfillment in progress are protected; financial history is never destroyed.
func (s *LifecycleService) Delete(orderID string) error {
	o, _, err := s.Orders.Get(orderID)
	if err != nil {
		return err
	}
	if domain.DeleteProtected(o.Status) {
		return domain.Invalid("orders in %s cannot be deleted", o.Status)
	}
	return s.Orders.Delete(orderID)
}
