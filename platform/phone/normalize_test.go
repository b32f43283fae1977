package phone

import "testing"

func TestNormalizeStripsCountryCodePrefix(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+919876543210", "9876543210"},
		{"919876543210", "9876543210"},
		{"9876543210", "9876543210"},
		{" 98765 43210 ", "9876543210"},
		{"+91 98765 43210", "9876543210"},
		// 91 prefix only stripped at twelve digits total; ten digits
		// starting with 91 are a valid number as-is
		{"9198765432", "9198765432"},
	}

	for _, tc := range cases {
		got, err := Normalize(tc.in)
		if err != nil {
			t.Fatalf("Normalize(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"12345",
		"98765432101",
		"+9198765432",
		"98765abcde",
		"919876543",
	}

	for _, in := range cases {
		if _, err := Normalize(in); err == nil {
			t.Fatalf("Normalize(%q) expected error, got none", in)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"+919876543210", "919876543210", "9876543210"}

	for _, in := range inputs {
		once, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q) unexpected error: %v", in, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(Normalize(%q)) unexpected error: %v", in, err)
		}
		if once != twice {
			t.Fatalf("normalization not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestVariantsIncludeOriginalTypedForm(t *testing.T) {
	variants := Variants("9876543210", "91 98765 43210")

	want := map[string]bool{
		"9876543210":     false,
		"+919876543210":  false,
		"91 98765 43210": false,
	}
	for _, v := range variants {
		if _, ok := want[v]; !ok {
			t.Fatalf("unexpected variant %q", v)
		}
		want[v] = true
	}
	for v, seen := range want {
		if !seen {
			t.Fatalf("missing variant %q", v)
		}
	}
}

func TestVariantsDeduplicateWhenTypedFormIsCanonical(t *testing.T) {
	variants := Variants("9876543210", "9876543210")
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %d: %v", len(variants), variants)
	}
}
