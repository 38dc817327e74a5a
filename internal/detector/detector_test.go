package detector

import (
	"sync"
	"testing"

	lingua "github.com/pemistahl/lingua-go"
)

var (
	sharedOnce sync.Once
	shared     *Detector
)

// all-language models are slow to load; tests share one detector
func sharedDetector() *Detector {
	sharedOnce.Do(func() { shared = New() })
	return shared
}

func TestDetector_DetectISO(t *testing.T) {
	d := sharedDetector()

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{"empty text", "", "", false},
		{"blank text", "   ", "", false},
		{"english message", "Hey, check out my blog and tell me what you think about it.", "en", true},
		{"ukrainian message", "Привіт, подивись мій блог і скажи, що ти про нього думаєш.", "uk", true},
		{"german message", "Hallo, schau dir meinen Blog an und sag mir, was du davon hältst.", "de", true},
		{"french message", "Salut, regarde mon blog et dis-moi ce que tu en penses.", "fr", true},
		{"spanish message", "Hola, mira mi blog y dime qué te parece.", "es", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := d.DetectISO(tt.text)
			if ok != tt.wantOK {
				t.Errorf("DetectISO(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && code != tt.wantCode {
				t.Errorf("DetectISO(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}

func TestDetector_Confidence(t *testing.T) {
	d := sharedDetector()
	text := "Hallo, schau dir meinen Blog an und sag mir, was du davon hältst."

	de, ok := d.Confidence(text, "de-AT")
	if !ok {
		t.Fatal("expected German to be known")
	}
	en, _ := d.Confidence(text, "en")
	if de <= en {
		t.Errorf("expected de confidence %.2f above en %.2f", de, en)
	}

	if _, ok := d.Confidence(text, "tlh"); ok {
		t.Error("expected unknown language for tlh")
	}
}

func TestNewFor(t *testing.T) {
	d := NewFor("en", "fr", "fr-CA", "not a locale")

	code, ok := d.DetectISO("Salut, regarde mon blog et dis-moi ce que tu en penses.")
	if !ok || code != "fr" {
		t.Errorf("DetectISO = %q, %v, want fr", code, ok)
	}
}

func TestLanguage(t *testing.T) {
	tests := []struct {
		locale string
		want   lingua.Language
		wantOK bool
	}{
		{"en", lingua.English, true},
		{"pt-BR", lingua.Portuguese, true},
		{"uk-UA", lingua.Ukrainian, true},
		{"zz", lingua.Unknown, false},
		{"", lingua.Unknown, false},
	}
	for _, tt := range tests {
		got, ok := Language(tt.locale)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Language(%q) = %v, %v, want %v, %v", tt.locale, got, ok, tt.want, tt.wantOK)
		}
	}
}
