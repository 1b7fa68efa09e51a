package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		// empty -> default
		{"", 10, 10},
		// valid ints
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		// invalid -> default (no trim)
		{"x", 5, 5},
		{" 42", 7, 7},
		// overflow -> default
		{"999999999999999999999999", -1, -1},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestPageLimit(t *testing.T) {
	cases := []struct {
		s    string
		want int
	}{
		{"", 20},
		{"abc", 20},
		{"0", 20},
		{"-5", 20},
		{"7", 7},
		{"50", 50},
		{"51", 50},
		{"1000", 50},
	}
	for _, tc := range cases {
		if got := PageLimit(tc.s, 20, 50); got != tc.want {
			t.Fatalf("PageLimit(%q) = %d; want %d", tc.s, got, tc.want)
		}
	}
}
