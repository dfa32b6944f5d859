package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// Locales negotiates a response locale against the configured set.
type Locales struct {
	fallback  string
	supported []language.Tag
	matcher   language.Matcher
}

// NewLocales builds a negotiator. The fallback is always supported and is
// preferred when nothing else matches.
func NewLocales(fallback string, supported []string) *Locales {
	fallbackTag, err := language.Parse(strings.TrimSpace(fallback))
	if err != nil {
		fallbackTag = language.English
	}
	tags := []language.Tag{fallbackTag}
	for _, s := range supported {
		tag, err := language.Parse(strings.TrimSpace(s))
		if err != nil || tag == fallbackTag {
			continue
		}
		tags = append(tags, tag)
	}
	return &Locales{
		fallback:  baseOf(fallbackTag),
		supported: tags,
		matcher:   language.NewMatcher(tags),
	}
}

// Match returns the first preference, in the given order, whose base
// language is supported, or "" when none is. The matcher may answer an
// unsupported language with the fallback at high confidence, so a result
// only counts when its base equals the preference's.
func (l *Locales) Match(prefs ...language.Tag) string {
	for _, pref := range prefs {
		tag, _, conf := l.matcher.Match(pref)
		if conf == language.No {
			continue
		}
		if base := baseOf(tag); base == baseOf(pref) {
			return base
		}
	}
	return ""
}

// Fallback returns the default locale.
func (l *Locales) Fallback() string {
	return l.fallback
}

// Detect picks a locale from X-Locale, then Accept-Language, then the
// country the request came from, then the fallback.
func (l *Locales) Detect(r *http.Request, country string) string {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		if tag, err := language.Parse(v); err == nil {
			if locale := l.Match(tag); locale != "" {
				return locale
			}
		}
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		if prefs, _, err := language.ParseAcceptLanguage(header); err == nil {
			if locale := l.Match(prefs...); locale != "" {
				return locale
			}
		}
	}
	if country != "" {
		if region, err := language.ParseRegion(country); err == nil {
			tag, err := language.Compose(language.Und, region)
			if err == nil {
				if base, conf := tag.Base(); conf != language.No {
					if locale := l.Match(language.Make(base.String())); locale != "" {
						return locale
					}
				}
			}
		}
	}
	return l.fallback
}

// I18N stores the negotiated locale and resolved country in the request
// context.
func I18N(locales *Locales, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r, lookup)
			locale := locales.Detect(r, country)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, country)
			}
			w.Header().Set("Content-Language", locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func baseOf(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LocaleFromContext returns the negotiated locale, "en" when none was set.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "en"
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

// ResolveCountry resolves a best-effort ISO country code for the given
// request: proxy headers first, then a locale region, then a GeoIP lookup.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	headerHints := []string{"X-Country-Code", "X-IP-Country", "CF-IPCountry", "X-Appengine-Country"}
	for _, key := range headerHints {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" && !strings.EqualFold(val, "XX") {
			return strings.ToUpper(val)
		}
	}
	if region := localeRegion(r.Header.Get("X-Locale")); region != "" {
		return region
	}
	if region := localeRegion(r.Header.Get("Accept-Language")); region != "" {
		return region
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

// localeRegion returns the region subtag of the first language in accept
// that names one, e.g. "GB" for "en-GB,en;q=0.9".
func localeRegion(accept string) string {
	for _, part := range strings.Split(accept, ",") {
		token := strings.TrimSpace(strings.Split(part, ";")[0])
		if token == "" {
			continue
		}
		tag, err := language.Parse(token)
		if err != nil {
			continue
		}
		if region, conf := tag.Region(); conf == language.Exact && region.IsCountry() {
			return region.String()
		}
	}
	return ""
}
