package domain

import "database/sql"

// Part is a stock item shared by the online store and the repair bay.
// The qty column is authoritative and is only ever mutated through the
// inventory ledger's reserve/release/adjust statements.
type Part struct {
	ID           string  `db:"id"`
	Name         string  `db:"name"`
	Description  string  `db:"description"`
	SellingPrice float64 `db:"selling_price"`
	BuyingPrice  float64 `db:"buying_price"`
	Qty          int     `db:"qty"`
	IsPublic     bool    `db:"is_public"`
	IsArchived   bool    `db:"is_archived"`
	CreatedAt    string  `db:"created_at"`
	UpdatedAt    string  `db:"updated_at"`
}

type PaymentMethod string

const (
	PayCash         PaymentMethod = "CASH"
	PayCOD          PaymentMethod = "COD"
	PayBankTransfer PaymentMethod = "BANK_TRANSFER"
	PayGCashManual  PaymentMethod = "GCASH_MANUAL"
	PayCard         PaymentMethod = "CARD"
	PayGCash        PaymentMethod = "GCASH"
	PayPayMaya      PaymentMethod = "PAYMAYA"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayCOD, PayBankTransfer, PayGCashManual, PayCard, PayGCash, PayPayMaya:
		return true
	}
	return false
}

// Manual methods need offline proof-of-payment review before fulfillment.
func (m PaymentMethod) Manual() bool {
	switch m {
	case PayBankTransfer, PayGCashManual, PayPayMaya:
		return true
	}
	return false
}

type DeliveryMethod string

const (
	DeliverPickup   DeliveryMethod = "PICKUP"
	DeliverDelivery DeliveryMethod = "DELIVERY"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliverPickup || m == DeliverDelivery
}

type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	StatusProcessing     OrderStatus = "PROCESSING"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusCompleted      OrderStatus = "COMPLETED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPendingPayment, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further business transition is expected.
func (s OrderStatus) Terminal() bool { return s == StatusCancelled }

// deleteProtected lists statuses that denote confirmed payment or fulfillment
// in progress; orders in these states must never be removed outright. The
// legacy labels (PAID, PROCESSED, DELIVERED) still occur on historical rows.
var deleteProtected = map[string]bool{
	"PAID":       true,
	"PROCESSING": true,
	"PROCESSED":  true,
	"SHIPPED":    true,
	"DELIVERED":  true,
	"COMPLETED":  true,
}

func DeleteProtected(status string) bool { return deleteProtected[status] }

type Order struct {
	ID             string         `db:"id"`
	CustomerName   string         `db:"customer_name"`
	CustomerEmail  string         `db:"customer_email"`
	CustomerPhone  string         `db:"customer_phone"`
	Subtotal       float64        `db:"subtotal"`
	ShippingFee    float64        `db:"shipping_fee"`
	Total          float64        `db:"total"`
	PaymentMethod  string         `db:"payment_method"`
	DeliveryMethod string         `db:"delivery_method"`
	ShipAddress    string         `db:"ship_address"`
	ShipCity       string         `db:"ship_city"`
	ShipPostal     string         `db:"ship_postal"`
	IncludeLabor   bool           `db:"include_labor"`
	Status         string         `db:"status"`
	TrackingNumber sql.NullString `db:"tracking_number"`
	CourierName    sql.NullString `db:"courier_name"`
	IsArchived     bool           `db:"is_archived"`
	CreatedAt      string         `db:"created_at"`
	UpdatedAt      string         `db:"updated_at"`
}

// OrderLineItem is a price snapshot taken at order time; it never changes
// after creation even if the part is later repriced or renamed.
type OrderLineItem struct {
	OrderID   string  `db:"order_id"`
	PartID    string  `db:"part_id"`
	Position  int     `db:"position"`
	PartName  string  `db:"part_name"`
	Qty       int     `db:"qty"`
	UnitPrice float64 `db:"unit_price"`
}

func (it OrderLineItem) LineTotal() float64 { return it.UnitPrice * float64(it.Qty) }

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty,omitempty"`
}
