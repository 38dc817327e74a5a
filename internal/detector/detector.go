package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
	"golang.org/x/text/language"
)

// Detector identifies the language of message text. Building one loads
// language models; reuse the instance.
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector for all languages lingua knows.
func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

// NewFor builds a detector restricted to the given locales. Locales lingua
// does not know are skipped; with fewer than two known languages it falls
// back to all languages.
func NewFor(locales ...string) *Detector {
	var langs []lingua.Language
	seen := map[lingua.Language]bool{}
	for _, l := range locales {
		lang, ok := Language(l)
		if ok && !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	if len(langs) < 2 {
		return New()
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(langs...).
		Build()
	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the ISO 639-1 code of text in lower case.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Confidence returns how likely text is written in the language of locale,
// in [0, 1]. ok is false when lingua does not know that language.
func (d *Detector) Confidence(text, locale string) (float64, bool) {
	lang, ok := Language(locale)
	if !ok {
		return 0, false
	}
	return d.detector.ComputeLanguageConfidence(text, lang), true
}

// Language maps a BCP 47 locale to its lingua language by base language.
func Language(locale string) (lingua.Language, bool) {
	tag, err := language.Parse(locale)
	if err != nil {
		return lingua.Unknown, false
	}
	base, _ := tag.Base()
	iso := lingua.GetIsoCode639_1FromValue(strings.ToUpper(base.String()))
	lang := lingua.GetLanguageFromIsoCode639_1(iso)
	if lang == lingua.Unknown {
		return lingua.Unknown, false
	}
	return lang, true
}
