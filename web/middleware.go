package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"agentskill/i18n"
)

const (
	// VisitorCookie holds the anonymous visitor id sent with visit beacons.
	VisitorCookie = "agentskill_vid"
	cookieMaxAge  = 365 * 24 * 60 * 60
)

type langKey struct{}

// LanguageFrom returns the language resolved for the request.
func LanguageFrom(ctx context.Context) i18n.Language {
	if lang, ok := ctx.Value(langKey{}).(i18n.Language); ok {
		return lang
	}
	return i18n.Default
}

// resolveLanguage settles the request language once and exposes it to
// handlers through the context and the propagated header.
func (s *Server) resolveLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var stored string
		if c, err := r.Cookie(i18n.StorageKey); err == nil {
			stored = c.Value
		}

		lang := i18n.Resolve(i18n.Request{
			Path:           r.URL.Path,
			Query:          r.URL.Query(),
			Stored:         stored,
			AcceptLanguage: r.Header.Get("Accept-Language"),
		})

		r.Header.Set(i18n.Header, string(lang))
		w.Header().Add("Vary", "Accept-Language, Cookie")
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), langKey{}, lang)))
	})
}

// rememberLanguage stores the language of a visited page as the preference
// when it differs from the stored one.
func rememberLanguage(w http.ResponseWriter, r *http.Request, lang i18n.Language) {
	if c, err := r.Cookie(i18n.StorageKey); err == nil && c.Value == string(lang) {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     i18n.StorageKey,
		Value:    string(lang),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}

// visitorID returns the visitor cookie, issuing a new id when absent or
// malformed.
func visitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(VisitorCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// accessLog writes one structured line per request.
func accessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.String("lang", r.Header.Get(i18n.Header)),
			}
			switch {
			case status >= http.StatusInternalServerError:
				log.Error("Request failed", fields...)
			case strings.HasPrefix(r.URL.Path, "/healthz"):
				log.Debug("Request served", fields...)
			default:
				log.Info("Request served", fields...)
			}
		})
	}
}

// Cache-Control values.
const (
	cacheListing = "public, s-maxage=600, stale-while-revalidate=60"
	cacheDetail  = "public, s-maxage=86400"
	cacheSitemap = "public, max-age=3600"
	cacheImage   = "public, max-age=86400"
	cachePrivate = "private, no-cache"
	cacheNone    = "no-store"
)

// privateWhenCookie keeps a response that sets a cookie out of shared caches.
// The check runs when the header is written, after handlers have chosen their
// Cache-Control and issued their cookies.
func privateWhenCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&cookieGuard{ResponseWriter: w}, r)
	})
}

type cookieGuard struct {
	http.ResponseWriter
	wroteHeader bool
}

func (g *cookieGuard) WriteHeader(code int) {
	if !g.wroteHeader {
		g.wroteHeader = true
		h := g.Header()
		if len(h.Values("Set-Cookie")) > 0 && h.Get("Cache-Control") != cacheNone {
			h.Set("Cache-Control", cachePrivate)
		}
	}
	g.ResponseWriter.WriteHeader(code)
}

func (g *cookieGuard) Write(b []byte) (int, error) {
	if !g.wroteHeader {
		g.WriteHeader(http.StatusOK)
	}
	return g.ResponseWriter.Write(b)
}

func (g *cookieGuard) Unwrap() http.ResponseWriter {
	return g.ResponseWriter
}

// pathParam returns a decoded route parameter. chi matches on the raw path
// when the request carries escaped segments.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}

// routeLanguage validates the {lang} segment, answering 404 for anything but
// en or zh.
func (s *Server) routeLanguage(w http.ResponseWriter, r *http.Request) (i18n.Language, bool) {
	lang, ok := i18n.Parse(chi.URLParam(r, "lang"))
	if !ok {
		s.handleNotFound(w, r)
		return "", false
	}
	return lang, true
}
