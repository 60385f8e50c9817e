package repos_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"partsdesk/internal/domain"
	"partsdesk/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
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
	INSERT INTO parts(id,name,selling_price,qty,is_public,is_archived) VALUES
	  ('brk-001','Brake Pad Set',1450,1,1,0),
	  ('flt-001','Oil Filter',320,10,1,0),
	  ('ecu-001','ECU Harness',5200,3,0,0),
	  ('old-001','Obsolete Bulb',40,4,1,1);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestReserveLastUnit(t *testing.T) {
	db := memdb(t)
	parts := repos.NewPartRepo(db)

	// First reservation takes the last unit; the second's conditional update
	// matches nothing and must classify as insufficient stock.
	if err := parts.Reserve(db, "brk-001", 1); err != nil {
		t.Fatal(err)
	}
	err := parts.Reserve(db, "brk-001", 1)
	var ins *domain.InsufficientStockError
	if !errors.As(err, &ins) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}

	qty, err := parts.Qty("brk-001")
	if err != nil {
		t.Fatal(err)
	}
	if qty != 0 {
		t.Fatalf("want qty=0, got %d", qty)
	}
}

func TestReserveUnavailableParts(t *testing.T) {
	db := memdb(t)
	parts := repos.NewPartRepo(db)

	var unavailable *domain.PartUnavailableError
	for _, id := range []string{"nope-404", "ecu-001", "old-001"} {
		err := parts.Reserve(db, id, 1)
		if !errors.As(err, &unavailable) {
			t.Fatalf("part %s: want PartUnavailableError, got %v", id, err)
		}
	}

	// Shop-only and archived rows must be untouched.
	for id, want := range map[string]int{"ecu-001": 3, "old-001": 4} {
		qty, err := parts.Qty(id)
		if err != nil {
			t.Fatal(err)
		}
		if qty != want {
			t.Fatalf("part %s: stock changed to %d", id, qty)
		}
	}
}

func TestReleaseRestocks(t *testing.T) {
	db := memdb(t)
	parts := repos.NewPartRepo(db)

	if err := parts.Reserve(db, "flt-001", 4); err != nil {
		t.Fatal(err)
	}
	if err := parts.Release(db, "flt-001", 4); err != nil {
		t.Fatal(err)
	}
	qty, _ := parts.Qty("flt-001")
	if qty != 10 {
		t.Fatalf("want qty back at 10, got %d", qty)
	}
}

func TestDeductStockGuard(t *testing.T) {
	db := memdb(t)
	parts := repos.NewPartRepo(db)

	// Manual deduction uses the same conditional guard as reservations.
	if err := parts.DeductStock("flt-001", 10); err != nil {
		t.Fatal(err)
	}
	err := parts.DeductStock("flt-001", 1)
	var ins *domain.InsufficientStockError
	if !errors.As(err, &ins) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}

	var unavailable *domain.PartUnavailableError
	if err := parts.DeductStock("nope-404", 1); !errors.As(err, &unavailable) {
		t.Fatalf("want PartUnavailableError, got %v", err)
	}

	if err := parts.AddStock("flt-001", 5); err != nil {
		t.Fatal(err)
	}
	qty, _ := parts.Qty("flt-001")
	if qty != 5 {
		t.Fatalf("want qty=5 after add, got %d", qty)
	}
}
