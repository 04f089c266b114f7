package payment

import "testing"

func TestDetectCardBrand(t *testing.T) {
	cases := map[string]string{
		"4111111111111111": BrandVisa,
		"5500000000000004": BrandMastercard,
		"2221000000000009": BrandMastercard,
		"378282246310005":  BrandAmex,
		"6070000000000000": BrandRuPay,
		"9999999999999":    BrandUnknown,
	}
	for number, want := range cases {
		if got := DetectCardBrand(number); got != want {
			t.Errorf("DetectCardBrand(%s) = %s, want %s", number, got, want)
		}
	}
}

func TestDigitsOnly(t *testing.T) {
	if d, ok := DigitsOnly("4111 1111-1111 1111"); !ok || d != "4111111111111111" {
		t.Fatalf("unexpected result %q %v", d, ok)
	}
	if _, ok := DigitsOnly("4111x"); ok {
		t.Fatal("expected letters to be rejected")
	}
}

func TestSimulatorBounds(t *testing.T) {
	always := NewRandomSimulator(1.5)
	never := NewRandomSimulator(-1)
	for i := 0; i < 100; i++ {
		if !always.Settle(MethodUPI).Success {
			t.Fatal("rate 1 must always succeed")
		}
		out := never.Settle(MethodCard)
		if out.Success || out.FailureReason == "" {
			t.Fatalf("rate 0 must always fail with a reason, got %+v", out)
		}
	}
}

func TestFixedSimulator(t *testing.T) {
	if !(FixedSimulator{Success: true}).Settle(MethodWallet).Success {
		t.Fatal("expected success")
	}
	if out := (FixedSimulator{}).Settle("cash"); out.FailureReason != "Payment failed" {
		t.Fatalf("unexpected reason %q", out.FailureReason)
	}
}
