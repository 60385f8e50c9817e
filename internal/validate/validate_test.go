package validate_test

import (
	"testing"

	"partsdesk/internal/validate"
)

func TestEmail(t *testing.T) {
	if _, ok := validate.Email("juan@shop.ph"); !ok {
		t.Fatal("valid email rejected")
	}
	for _, bad := range []string{"", "not-an-email", "a@b", "a b@c.com"} {
		if _, ok := validate.Email(bad); ok {
			t.Fatalf("accepted bad email %q", bad)
		}
	}
}

func TestPhone(t *testing.T) {
	good := []string{"09171234567", "+639171234567", "0917 123 4567", "0917-123-4567"}
	for _, s := range good {
		if _, ok := validate.Phone(s); !ok {
			t.Fatalf("rejected valid PH mobile %q", s)
		}
	}
	bad := []string{"", "9171234567", "021234567", "09171234", "+19171234567"}
	for _, s := range bad {
		if _, ok := validate.Phone(s); ok {
			t.Fatalf("accepted bad PH mobile %q", s)
		}
	}
}

func TestCardNumberLuhn(t *testing.T) {
	good := []string{"4539578763621486", "4111 1111 1111 1111", "5555-5555-5555-4444"}
	for _, s := range good {
		if !validate.CardNumber(s) {
			t.Fatalf("rejected valid PAN %q", s)
		}
	}
	bad := []string{"", "4111111111111112", "1234", "4111x11111111111"}
	for _, s := range bad {
		if validate.CardNumber(s) {
			t.Fatalf("accepted bad PAN %q", s)
		}
	}
}

func TestQtyClamp(t *testing.T) {
	if validate.Qty(0) != 0 || validate.Qty(-3) != 0 {
		t.Fatal("non-positive qty should be invalid")
	}
	if validate.Qty(7) != 7 {
		t.Fatal("in-range qty changed")
	}
	if validate.Qty(500) != 100 {
		t.Fatal("oversized qty not clamped")
	}
}
