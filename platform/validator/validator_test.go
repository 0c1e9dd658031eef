package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Recipient string `validate:"required,email"`
	Limit     int    `validate:"min=0,max=10"`
	Kind      string `validate:"omitempty,kind"`
}

func TestFieldErrorsFlattensFailures(t *testing.T) {
	val := New()
	if err := val.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "email"
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := val.Struct(sample{Recipient: "", Limit: 11, Kind: "fax"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	got := FieldErrors(err)
	want := []string{"recipient: required", "limit: max=10", "kind: kind"}
	if len(got) != len(want) {
		t.Fatalf("FieldErrors() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FieldErrors()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	if FieldErrors(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestVarValidatesSingleValue(t *testing.T) {
	if err := New().Var("not-an-email", "email"); err == nil {
		t.Fatal("expected invalid email to fail")
	}
}
