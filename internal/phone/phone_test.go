package phone

import "testing"

func TestCallingCode(t *testing.T) {
	cases := map[string]string{
		"DE":   "49",
		"de":   "49",
		" at ": "43",
		"US":   "1",
		"XX":   "0",
		"":     "0",
	}
	for in, want := range cases {
		if got := CallingCode(in); got != want {
			t.Fatalf("CallingCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsKnownCountry(t *testing.T) {
	if !IsKnownCountry("de") || IsKnownCountry("XX") {
		t.Fatal("country lookup broken")
	}
}

func TestCountryForCallingCode(t *testing.T) {
	if got := CountryForCallingCode("49"); got != "DE" {
		t.Fatalf("49 -> %q", got)
	}
	// código compartido: gana el alfabéticamente menor
	if got := CountryForCallingCode("1"); got != "CA" {
		t.Fatalf("1 -> %q", got)
	}
	if got := CountryForCallingCode("999"); got != "" {
		t.Fatalf("unassigned -> %q", got)
	}
}
