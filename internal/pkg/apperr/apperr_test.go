package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{err: NotFoundf("missing"), want: KindNotFound},
		{err: Invalidf("bad input"), want: KindInvalid},
		{err: Forbiddenf("not yours"), want: KindForbidden},
		{err: Conflictf("already done"), want: KindConflict},
		{err: Paymentf("declined"), want: KindPayment},
		{err: errors.New("plain"), want: KindUnknown},
		{err: fmt.Errorf("wrapped: %w", Invalidf("bad")), want: KindInvalid},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Fatalf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("row lock timeout")
	err := Wrap(KindConflict, cause, "concurrent checkout detected")

	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped error to match cause via errors.Is")
	}
	if !IsKind(err, KindConflict) {
		t.Fatalf("expected wrapped error to carry KindConflict")
	}
	want := "concurrent checkout detected: row lock timeout"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{kind: KindNotFound, want: "not_found"},
		{kind: KindInvalid, want: "invalid"},
		{kind: KindForbidden, want: "forbidden"},
		{kind: KindConflict, want: "conflict"},
		{kind: KindPayment, want: "payment_error"},
		{kind: KindUnknown, want: "internal_error"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Fatalf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
