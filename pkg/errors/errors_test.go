package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("row locked")
	err := Wrap(CodeConflict, cause, "settlement collided")

	if err.Code() != CodeConflict {
		t.Fatalf("unexpected code: %s", err.Code())
	}
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeInsufficientFunds, "balance below total")
	outer := fmt.Errorf("purchase failed: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error in chain")
	}
	if typed.Code() != CodeInsufficientFunds {
		t.Fatalf("unexpected code: %s", typed.Code())
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(CodeAccountNotFound, "no such account"))
	if !HasCode(err, CodeAccountNotFound) {
		t.Fatal("expected HasCode to match")
	}
	if HasCode(err, CodeInsufficientFunds) {
		t.Fatal("unexpected code match")
	}
	if HasCode(nil, CodeInternal) {
		t.Fatal("nil error should never match")
	}
}

func TestMetadataForStatuses(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeAccountNotFound, http.StatusNotFound},
		{CodeInsufficientFunds, http.StatusPaymentRequired},
		{CodeConflict, http.StatusConflict},
		{Code("unmapped"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.code, tc.status, got)
		}
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("publish timeout"), "export sink failed")
	dump := Dump(err)

	if dump.Code != CodeDependency {
		t.Fatalf("unexpected dump code: %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", dump.Chain)
	}
}
