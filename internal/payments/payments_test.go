package payments

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/ADRCoding/college-bites-delivery/pkg/errors"
)

func TestQuoteAmountCents(t *testing.T) {
	cases := []struct {
		quantity int
		want     int
	}{
		{quantity: 1, want: 1000},
		{quantity: 3, want: 3000},
		{quantity: 20, want: 20000},
	}
	for _, tc := range cases {
		got, err := QuoteAmountCents(tc.quantity)
		if err != nil {
			t.Fatalf("quote quantity %d: %v", tc.quantity, err)
		}
		if got != tc.want {
			t.Fatalf("quantity %d: expected %d cents, got %d", tc.quantity, tc.want, got)
		}
	}
}

func TestQuoteAmountCentsRejectsNonPositive(t *testing.T) {
	for _, quantity := range []int{0, -1} {
		_, err := QuoteAmountCents(quantity)
		if err == nil {
			t.Fatalf("expected error for quantity %d", quantity)
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	}
}

func TestNewPaymentIDFormat(t *testing.T) {
	now := time.Now()
	id, err := NewPaymentID(now)
	if err != nil {
		t.Fatalf("new payment id: %v", err)
	}

	pattern := regexp.MustCompile(`^payment_\d+_[a-z0-9]{8}$`)
	if !pattern.MatchString(id) {
		t.Fatalf("unexpected payment id format %q", id)
	}

	parts := strings.Split(id, "_")
	ms, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		t.Fatalf("parse timestamp part: %v", err)
	}
	if ms != now.UnixMilli() {
		t.Fatalf("expected timestamp %d, got %d", now.UnixMilli(), ms)
	}
}

func TestNewPaymentIDUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := NewPaymentID(now)
		if err != nil {
			t.Fatalf("new payment id: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate payment id %q", id)
		}
		seen[id] = true
	}
}
