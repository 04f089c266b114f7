package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "applications_active_unique"})

	if !IsUniqueViolation(err, "") {
		t.Fatal("expected any unique violation to match")
	}
	if !IsUniqueViolation(err, "applications_active_unique") {
		t.Fatal("expected named constraint to match")
	}
	if IsUniqueViolation(err, "payments_open_unique") {
		t.Fatal("did not expect different constraint to match")
	}
	if IsUniqueViolation(errors.New("boom"), "") {
		t.Fatal("plain errors are not unique violations")
	}
}

func TestIsCheckViolation(t *testing.T) {
	err := &pq.Error{Code: "23514", Constraint: "wallets_balance_check"}
	if !IsCheckViolation(err, "wallets_balance_check") {
		t.Fatal("expected check violation")
	}
}
