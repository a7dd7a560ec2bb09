package whisper

import (
	"context"
	"fmt"
	"strings"

	"voicedecoder/internal/language"
	"voicedecoder/internal/services"
)

// NormalizeLanguage converts an ISO code, English name, or BCP 47 tag
// ("en-US", "EN", "deu", "german") to the two-letter code the recognizer
// accepts. Empty input means auto-detect and yields "".
func NormalizeLanguage(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	code := language.ToISO2(value)
	if code == "" {
		return "", services.Wrap(services.ErrValidation, "whisper", "parse language",
			fmt.Sprintf("invalid language %q", value), nil)
	}
	return code, nil
}

type languageKey struct{}

// ContextWithLanguage pins the spoken language for model calls made with ctx.
// It overrides the loader's default.
func ContextWithLanguage(ctx context.Context, code string) context.Context {
	code = strings.TrimSpace(code)
	if code == "" {
		return ctx
	}
	return context.WithValue(ctx, languageKey{}, code)
}

// LanguageFromContext returns the pinned language, if any.
func LanguageFromContext(ctx context.Context) (string, bool) {
	code, ok := ctx.Value(languageKey{}).(string)
	return code, ok && code != ""
}
