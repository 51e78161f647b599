package i18n

import "testing"

func TestLookupFallsBackToKey(t *testing.T) {
	if got := Lookup(English, "no_such_key"); got != "no_such_key" {
		t.Fatalf("expected raw key, got %q", got)
	}
	if got := Lookup(Language("fr"), "login"); got != "login" {
		t.Fatalf("expected raw key for unknown language, got %q", got)
	}
}

func TestLookupPerLanguage(t *testing.T) {
	if got := Lookup(English, "login"); got != "Login" {
		t.Fatalf("unexpected english message %q", got)
	}
	if got := Lookup(Arabic, "login"); got == "login" || got == "Login" {
		t.Fatalf("expected arabic message, got %q", got)
	}
}

func TestTablesShareKeys(t *testing.T) {
	for key := range en {
		if _, ok := ar[key]; !ok {
			t.Errorf("key %q missing from arabic table", key)
		}
	}
	for key := range ar {
		if _, ok := en[key]; !ok {
			t.Errorf("key %q missing from english table", key)
		}
	}
}

func TestDirectionAndParse(t *testing.T) {
	if Direction(English) != LTR || Direction(Arabic) != RTL {
		t.Fatalf("unexpected directions")
	}
	if _, err := Parse("ar"); err != nil {
		t.Fatalf("parse ar: %v", err)
	}
	if _, err := Parse("de"); err == nil {
		t.Fatalf("expected error for unsupported tag")
	}
}
