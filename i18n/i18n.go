// Package i18n negotiates the request language and renders message codes
// through an x/text catalog. Unknown codes render as the code itself.
package i18n

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Default is the language used when negotiation finds nothing better.
const Default = "en"

var (
	supported = []language.Tag{language.English, language.French}
	matcher   = language.NewMatcher(supported)
	cat       = newCatalog()
)

type ctxKey struct{}

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range messages {
		for code, msg := range entries {
			if err := b.SetString(tag, code, msg); err != nil {
				panic("i18n: " + code + ": " + err.Error())
			}
		}
	}
	return b
}

// DetectLanguage returns the best supported base language for an
// Accept-Language header value.
func DetectLanguage(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// T renders code in lang, formatting args into the catalog entry.
func T(lang, code string, args ...any) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag, message.Catalog(cat))
	return p.Sprintf(code, args...)
}

// WithLanguage stores the negotiated language in ctx.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromContext returns the language stored by WithLanguage, or Default.
func FromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return Default
}

// Tc renders code in the language carried by ctx.
func Tc(ctx context.Context, code string, args ...any) string {
	return T(FromContext(ctx), code, args...)
}

// Middleware negotiates the language from Accept-Language and stores it in
// the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := DetectLanguage(r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", lang)
		next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), lang)))
	})
}
