package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"5000", 500000, true},
		{".5", 50, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{".", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseDecimalToCentsNegative(t *testing.T) {
	_, err := ParseDecimalToCents("-10")
	if !errors.Is(err, ErrNegativePayment) {
		t.Fatalf("expected ErrNegativePayment, got %v", err)
	}
}

func TestParseINR(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		err  error
	}{
		{"5,000", 500000, nil},
		{"₹1,23,456.00", 12345600, nil},
		{"₹ 4,500.25", 450025, nil},
		{"7500", 750000, nil},
		{"₹-5", 0, ErrNegativePayment},
		{"₹", 0, ErrInvalidAmount},
		{"1,2.3.4", 0, ErrInvalidAmount},
	}
	for _, tc := range cases {
		got, err := ParseINR(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%q expected %v, got %v", tc.in, tc.err, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.want, got, err)
		}
	}
}

func TestMoneyDecimal(t *testing.T) {
	cases := map[int64]string{
		0:      "0",
		500000: "5000",
		500050: "5000.5",
		500005: "5000.05",
		999900: "9999",
		-12345: "-123.45",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).Decimal(); got != want {
			t.Errorf("Decimal(%d) = %q, want %q", cents, got, want)
		}
	}
}

func TestFormatINR(t *testing.T) {
	cases := map[int64]string{
		0:          "₹0.00",
		50000:      "₹500.00",
		850000:     "₹8,500.00",
		12345600:   "₹1,23,456.00",
		1234567890: "₹1,23,45,678.90",
		-500:       "-₹5.00",
	}
	for cents, want := range cases {
		if got := FormatINR(Money{Cents: cents}); got != want {
			t.Errorf("FormatINR(%d) = %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a": 3500, "b": "12.5"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A.Cents != 350000 || v.B.Cents != 1250 {
		t.Fatalf("unexpected cents: %d %d", v.A.Cents, v.B.Cents)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":3500,"b":12.5}` {
		t.Fatalf("unexpected json: %s", out)
	}

	if err := json.Unmarshal([]byte(`{"a": -1}`), &v); !errors.Is(err, ErrNegativePayment) {
		t.Fatalf("expected ErrNegativePayment, got %v", err)
	}
}
