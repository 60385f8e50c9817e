package services

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"partsdesk/internal/domain"
	"partsdesk/internal/repos"
	"partsdesk/internal/validate"
)

type RequestedItem struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

type PlaceRequest struct {
	CustomerName string          `json:"customerName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Items        []RequestedItem `json:"items"`

	PaymentMethod  string `json:"paymentMethod"`
	DeliveryMethod string `json:"deliveryMethod"`

	ShipAddress string `json:"shippingAddress"`
	ShipCity    string `json:"shippingCity"`
	ShipPostal  string `json:"shippingPostal"`

	CardNumber   string `json:"cardNumber"`
	GcashNumber  string `json:"gcashNumber"`
	IncludeLabor bool   `json:"includeLabor"`
}

type PlaceResult struct {
	OrderID         string
	Status          domain.OrderStatus
	RequiresPayment bool
}

type OrderService struct {
	db     *sqlx.DB
	Parts  *repos.PartRepo
	Orders *repos.OrderRepo
	Pricer Pricer
	Notify Notifier
}

func NewOrderService(db *sqlx.DB, parts *repos.PartRepo, orders *repos.OrderRepo, pricer Pricer, notify Notifier) *OrderService {
	return &OrderService{db: db, Parts: parts, Orders: orders, Pricer: pricer, Notify: notify}
}

// Place runs the whole order placement as one transaction: validate, reserve
// stock per line in submitted order, price server-side, persist. Any failure
// rolls everything back; no partial stock deduction survives. The payment
// notification is queued only after commit.
func (s *OrderService) Place(req PlaceRequest) (PlaceResult, error) {
	name, email, phone, err := validateContact(req)
	if err != nil {
		return PlaceResult{}, err
	}

	if len(req.Items) == 0 {
		return PlaceResult{}, domain.Invalid("your cart is empty")
	}

	pay := domain.PaymentMethod(req.PaymentMethod)
	if !pay.Valid() {
		return PlaceResult{}, domain.Invalid("unknown payment method")
	}
	delivery := domain.DeliveryMethod(req.DeliveryMethod)
	if !delivery.Valid() {
		return PlaceResult{}, domain.Invalid("delivery method must be PICKUP or DELIVERY")
	}

	// Payment-method specifics fail fast, before any inventory side effect.
	switch pay {
	case domain.PayCard:
		if !validate.CardNumber(req.CardNumber) {
			return PlaceResult{}, domain.Invalid("card number failed validation")
		}
	case domain.PayGCash, domain.PayGCashManual:
		if _, ok := validate.GCashNumber(req.GcashNumber); !ok {
			return PlaceResult{}, domain.Invalid("enter a valid GCash mobile number")
		}
	}

	if delivery == domain.DeliverDelivery {
		if req.ShipAddress == "" || req.ShipCity == "" {
			return PlaceResult{}, domain.Invalid("shipping address is required for delivery")
		}
		if _, ok := validate.Postal(req.ShipPostal); !ok {
			return PlaceResult{}, domain.Invalid("enter a valid 4-digit postal code")
		}
	}

	seen := map[string]bool{}
	for _, it := range req.Items {
		if _, ok := validate.ID(it.ID); !ok {
			return PlaceResult{}, domain.Invalid("invalid part id")
		}
		if seen[it.ID] {
			return PlaceResult{}, domain.Invalid("duplicate line for part %s", it.ID)
		}
		seen[it.ID] = true
		if it.Qty < 1 || validate.Qty(it.Qty) != it.Qty {
			return PlaceResult{}, domain.Invalid("invalid quantity for part %s", it.ID)
		}
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return PlaceResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	// Reserve each line in submitted order; the first failure aborts all by
	// rolling back the transaction.
	items := make([]domain.OrderLineItem, 0, len(req.Items))
	for _, it := range req.Items {
		if err := s.Parts.Reserve(tx, it.ID, it.Qty); err != nil {
			return PlaceResult{}, err
		}
		p, err := s.Parts.GetForSale(tx, it.ID)
		if err != nil {
			return PlaceResult{}, err
		}
		items = append(items, domain.OrderLineItem{
			PartID:    p.ID,
			PartName:  p.Name,
			Qty:       it.Qty,
			UnitPrice: p.SellingPrice,
		})
	}

	quote := s.Pricer.Quote(items, delivery)

	status := domain.StatusPending
	if pay.Manual() {
		status = domain.StatusPendingPayment
	}

	order := &domain.Order{
		ID:             uuid.NewString(),
		CustomerName:   name,
		CustomerEmail:  email,
		CustomerPhone:  phone,
		Subtotal:       quote.Subtotal,
		ShippingFee:    quote.ShippingFee,
		Total:          quote.Total,
		PaymentMethod:  string(pay),
		DeliveryMethod: string(delivery),
		ShipAddress:    req.ShipAddress,
		ShipCity:       req.ShipCity,
		ShipPostal:     req.ShipPostal,
		IncludeLabor:   req.IncludeLabor,
		Status:         string(status),
	}
	if err := s.Orders.Create(tx, order, items); err != nil {
		return PlaceResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return PlaceResult{}, err
	}

	// Post-commit only; a lost email never un-places an order.
	if pay.Manual() {
		s.Notify.Notify(EventPaymentInstructions, email, map[string]any{
			"Name":          name,
			"OrderID":       order.ID,
			"PaymentMethod": string(pay),
			"Total":         quote.Total,
		})
	}

	return PlaceResult{OrderID: order.ID, Status: status, RequiresPayment: pay.Manual()}, nil
}

func validateContact(req PlaceRequest) (name, email, phone string, err error) {
	name, ok := validate.Name(req.CustomerName)
	if !ok {
		return "", "", "", domain.Invalid("name is required (max 80 characters)")
	}
	email, ok = validate.Email(req.Email)
	if !ok {
		return "", "", "", domain.Invalid("enter a valid email address")
	}
	phone, ok = validate.Phone(req.Phone)
	if !ok {
		return "", "", "", domain.Invalid("enter a valid PH mobile number")
	}
	return name, email, phone, nil
}
