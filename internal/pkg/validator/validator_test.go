package validator

import "testing"

type upiForm struct {
	UPIID  string `json:"upi_id" validate:"required,upi_id"`
	Method string `json:"method" validate:"required,payment_method"`
}

func TestIsUPIID(t *testing.T) {
	cases := map[string]bool{
		"student@okaxis": true,
		"a@b":            true,
		"@okaxis":        false,
		"student@":       false,
		"student":        false,
		"a@b@c":          false,
		"stu dent@upi":   false,
	}
	for in, want := range cases {
		if got := IsUPIID(in); got != want {
			t.Errorf("IsUPIID(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidateUsesJSONNames(t *testing.T) {
	errs := Validate(&upiForm{UPIID: "nope", Method: "cash"})
	if errs["upi_id"] == "" {
		t.Fatalf("expected upi_id error, got %v", errs)
	}
	if errs["method"] == "" {
		t.Fatalf("expected method error, got %v", errs)
	}

	if errs := Validate(&upiForm{UPIID: "me@upi", Method: "card"}); errs != nil {
		t.Fatalf("expected valid form, got %v", errs)
	}
}
