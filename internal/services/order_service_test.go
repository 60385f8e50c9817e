package services_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"partsdesk/internal/domain"
	"partsdesk/internal/repos"
	"partsdesk/internal/services"
)

func memdbAll(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE parts(
	  id TEXT PRIMARY KEY, name TEXT, description TEXT DEFAULT '',
	  selling_price NUMERIC, buying_price NUMERIC DEFAULT 0,
	  qty INTEGER NOT NULL DEFAULT 0 CHECK (qty >= 0),
	  is_public INTEGER DEFAULT 1, is_archived INTEGER DEFAULT 0,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT
	);
	CREATE TABLE orders(
	  id TEXT PRIMARY KEY, customer_name TEXT, customer_email TEXT, customer_phone TEXT,
	  subtotal NUMERIC, shipping_fee NUMERIC, total NUMERIC,
	  payment_method TEXT, delivery_method TEXT,
	  ship_address TEXT DEFAULT '', ship_city TEXT DEFAULT '', ship_postal TEXT DEFAULT '',
	  include_labor INTEGER DEFAULT 0, status TEXT,
	  tracking_number TEXT, courier_name TEXT, is_archived INTEGER DEFAULT 0,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT
	);
	CREATE TABLE order_items(
	  order_id TEXT, part_id TEXT, position INTEGER, part_name TEXT,
	  qty INTEGER, unit_price NUMERIC, PRIMARY KEY(order_id, part_id)
	);

	INSERT INTO parts(id,name,selling_price,qty) VALUES
	  ('pad-100','Brake Pad',100,5),
	  ('rotor-3k','Brake Rotor',3000,9),
	  ('last-one','Clutch Kit',2500,1);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

// fakeNotifier records queued events; the real dispatcher is fire-and-forget.
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
	last   map[string]any
}

func (f *fakeNotifier) Notify(event, to string, data map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	f.last = data
}

func newOrderService(db *sqlx.DB, notify services.Notifier) (*services.OrderService, *repos.PartRepo, *repos.OrderRepo) {
	parts := repos.NewPartRepo(db)
	orders := repos.NewOrderRepo(db)
	pricer := services.Pricer{FreeShippingThreshold: 5000, FlatRate: 150}
	return services.NewOrderService(db, parts, orders, pricer, notify), parts, orders
}

func baseRequest(items ...services.RequestedItem) services.PlaceRequest {
	return services.PlaceRequest{
		CustomerName:   "Juan Dela Cruz",
		Email:          "juan@shop.ph",
		Phone:          "09171234567",
		Items:          items,
		PaymentMethod:  "CASH",
		DeliveryMethod: "PICKUP",
	}
}

func TestPlaceCashPickup(t *testing.T) {
	db := memdbAll(t)
	notify := &fakeNotifier{}
	svc, parts, orders := newOrderService(db, notify)

	res, err := svc.Place(baseRequest(services.RequestedItem{ID: "pad-100", Qty: 2}))
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != domain.StatusPending || res.RequiresPayment {
		t.Fatalf("want PENDING without payment step, got %+v", res)
	}

	qty, _ := parts.Qty("pad-100")
	if qty != 3 {
		t.Fatalf("want stock 3, got %d", qty)
	}

	o, items, err := orders.Get(res.OrderID)
	if err != nil {
		t.Fatal(err)
	}
	if o.Total != 200 || o.Subtotal != 200 || o.ShippingFee != 0 {
		t.Fatalf("want total 200, got %+v", o)
	}
	if len(items) != 1 || items[0].UnitPrice != 100 {
		t.Fatalf("bad snapshot: %+v", items)
	}
	if len(notify.events) != 0 {
		t.Fatalf("cash order must not queue payment instructions: %v", notify.events)
	}
}

func TestPlaceInsufficientStockRollsBack(t *testing.T) {
	db := memdbAll(t)
	svc, parts, orders := newOrderService(db, &fakeNotifier{})

	// Two lines; the second exceeds stock, so the first's reservation must
	// not survive either.
	_, err := svc.Place(baseRequest(
		services.RequestedItem{ID: "pad-100", Qty: 1},
		services.RequestedItem{ID: "last-one", Qty: 2},
	))
	var ins *domain.InsufficientStockError
	if !errors.As(err, &ins) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}

	for id, want := range map[string]int{"pad-100": 5, "last-one": 1} {
		qty, _ := parts.Qty(id)
		if qty != want {
			t.Fatalf("part %s: stock leaked to %d", id, qty)
		}
	}
	all, err := orders.ListLatest(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatalf("no order must be created, got %d", len(all))
	}
}

func TestPlaceShippingFee(t *testing.T) {
	db := memdbAll(t)
	svc, _, orders := newOrderService(db, &fakeNotifier{})

	delivery := func(items ...services.RequestedItem) services.PlaceRequest {
		req := baseRequest(items...)
		req.DeliveryMethod = "DELIVERY"
		req.ShipAddress = "123 Mabini St"
		req.ShipCity = "Quezon City"
		req.ShipPostal = "1100"
		return req
	}

	// Subtotal 6000 >= threshold 5000: free shipping.
	res, err := svc.Place(delivery(services.RequestedItem{ID: "rotor-3k", Qty: 2}))
	if err != nil {
		t.Fatal(err)
	}
	o, _, _ := orders.Get(res.OrderID)
	if o.ShippingFee != 0 || o.Total != 6000 {
		t.Fatalf("want free shipping on 6000, got fee=%v total=%v", o.ShippingFee, o.Total)
	}

	// Subtotal 3000 under threshold: flat rate applies.
	res, err = svc.Place(delivery(services.RequestedItem{ID: "rotor-3k", Qty: 1}))
	if err != nil {
		t.Fatal(err)
	}
	o, _, _ = orders.Get(res.OrderID)
	if o.ShippingFee != 150 || o.Total != 3150 {
		t.Fatalf("want flat fee 150, got fee=%v total=%v", o.ShippingFee, o.Total)
	}
}

func TestPlaceManualMethodQueuesInstructions(t *testing.T) {
	db := memdbAll(t)
	notify := &fakeNotifier{}
	svc, _, _ := newOrderService(db, notify)

	req := baseRequest(services.RequestedItem{ID: "pad-100", Qty: 1})
	req.PaymentMethod = "BANK_TRANSFER"
	res, err := svc.Place(req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != domain.StatusPendingPayment || !res.RequiresPayment {
		t.Fatalf("want PENDING_PAYMENT, got %+v", res)
	}
	if len(notify.events) != 1 || notify.events[0] != services.EventPaymentInstructions {
		t.Fatalf("want payment_instructions queued, got %v", notify.events)
	}
}

func TestPlaceValidationFailsFast(t *testing.T) {
	db := memdbAll(t)
	svc, parts, _ := newOrderService(db, &fakeNotifier{})

	cases := []func(*services.PlaceRequest){
		func(r *services.PlaceRequest) { r.Items = nil },
		func(r *services.PlaceRequest) { r.Email = "nope" },
		func(r *services.PlaceRequest) { r.Phone = "12345" },
		func(r *services.PlaceRequest) { r.PaymentMethod = "BARTER" },
		func(r *services.PlaceRequest) { r.PaymentMethod = "CARD"; r.CardNumber = "4111111111111112" },
		func(r *services.PlaceRequest) { r.PaymentMethod = "GCASH_MANUAL"; r.GcashNumber = "123" },
		func(r *services.PlaceRequest) { r.DeliveryMethod = "DELIVERY" }, // no address
	}
	for i, mutate := range cases {
		req := baseRequest(services.RequestedItem{ID: "pad-100", Qty: 1})
		mutate(&req)
		_, err := svc.Place(req)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("case %d: want ValidationError, got %v", i, err)
		}
	}

	// No validation failure may touch stock.
	qty, _ := parts.Qty("pad-100")
	if qty != 5 {
		t.Fatalf("validation failures leaked stock: %d", qty)
	}
}

func TestRoundTripSubtotal(t *testing.T) {
	db := memdbAll(t)
	svc, _, orders := newOrderService(db, &fakeNotifier{})

	res, err := svc.Place(baseRequest(
		services.RequestedItem{ID: "pad-100", Qty: 3},
		services.RequestedItem{ID: "rotor-3k", Qty: 1},
	))
	if err != nil {
		t.Fatal(err)
	}

	o, items, err := orders.Get(res.OrderID)
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, it := range items {
		sum += it.LineTotal()
	}
	if sum != o.Subtotal {
		t.Fatalf("re-summed items %v != stored subtotal %v", sum, o.Subtotal)
	}
	if o.Total != o.Subtotal+o.ShippingFee {
		t.Fatalf("total invariant broken: %+v", o)
	}
	// Submission order preserved.
	if items[0].PartID != "pad-100" || items[1].PartID != "rotor-3k" {
		t.Fatalf("line order not preserved: %+v", items)
	}
}
