package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("unknown_field", nil); msg != "unknown field" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("unknown_field", nil); msg == "unknown field" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_Placeholders(t *testing.T) {
	got := T("type_mismatch", map[string]string{"expected": "integer", "actual": "string"})
	if got != "type mismatch: expected integer, got string" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestTranslator_UnknownCodeFallsBack(t *testing.T) {
	if got := T("no_such_code", nil); got != "no_such_code" {
		t.Fatalf("expected code echo, got %q", got)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestTranslator_Custom(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	if got := T("unknown_field", nil); got != "X:unknown_field" {
		t.Fatalf("custom translator not used: %q", got)
	}
}
