package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/dtca-portal/dtca-portal/internal/observability"
	"github.com/dtca-portal/dtca-portal/internal/shared"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics
}

// sessionWriter commits the session right before the status line is sent.
// When the commit fails the handler's response is replaced by a 500 and its
// body is dropped.
type sessionWriter struct {
	http.ResponseWriter
	sess        *shared.Session
	manager     *shared.SessionManager
	req         *http.Request
	logger      *slog.Logger
	wroteHeader bool
	failed      bool
}

func (w *sessionWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	if err := w.manager.Commit(w.req.Context(), w.ResponseWriter, w.sess); err != nil {
		w.failed = true
		w.logger.Error("commit session",
			slog.String("path", w.req.URL.Path),
			slog.Int("status", status),
			slog.Any("error", err))
		header := w.ResponseWriter.Header()
		for _, name := range []string{"Location", "Content-Type", "Content-Length", "Content-Encoding", "Vary"} {
			header.Del(name)
		}
		header.Set("Content-Type", "text/plain; charset=utf-8")
		header.Set("Cache-Control", "no-store")
		w.ResponseWriter.WriteHeader(http.StatusInternalServerError)
		_, _ = w.ResponseWriter.Write([]byte(http.StatusText(http.StatusInternalServerError) + "\n"))
		return
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *sessionWriter) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.failed {
		return len(data), nil
	}
	return w.ResponseWriter.Write(data)
}

func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// contentSecurityPolicy allows inline style attributes for bar widths.
const contentSecurityPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"

// MiddlewareStack installs the portal middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	timeout, perMinute := 30*time.Second, 120
	if cfg.Config != nil {
		if cfg.Config.AppRequestTimeout > 0 {
			timeout = cfg.Config.AppRequestTimeout
		}
		if cfg.Config.RateLimitPerMinute > 0 {
			perMinute = cfg.Config.RateLimitPerMinute
		}
	}
	stack := []func(http.Handler) http.Handler{
		middleware.RealIP,
		middleware.RequestID,
		cfg.loadSession,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		cfg.securityHeaders(),
		middleware.Compress(5),
		httprate.Limit(perMinute, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
		cfg.verifyCSRF,
	}
	if cfg.Metrics != nil {
		stack = append(stack, cfg.Metrics.Middleware)
	}
	return stack
}

func (cfg MiddlewareConfig) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := cfg.SessionManager.Load(r.Context(), r)
		if err != nil {
			cfg.Logger.Error("load session", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		r = r.WithContext(shared.ContextWithSession(r.Context(), sess))
		next.ServeHTTP(&sessionWriter{
			ResponseWriter: w,
			sess:           sess,
			manager:        cfg.SessionManager,
			req:            r,
			logger:         cfg.Logger,
		}, r)
	})
}

// verifyCSRF guards every state-changing method; the token comes from the
// form field or the X-CSRF-Token header.
func (cfg MiddlewareConfig) verifyCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !shared.SafeMethod(r.Method) {
			err := cfg.CSRFManager.Verify(shared.SessionFromContext(r.Context()), shared.CSRFTokenFromRequest(r))
			if err != nil {
				cfg.Logger.Warn("csrf rejected", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (cfg MiddlewareConfig) securityHeaders() func(http.Handler) http.Handler {
	headers := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		FeaturePolicy:         "none",
		ContentSecurityPolicy: contentSecurityPolicy,
		SSLRedirect:           cfg.Config != nil && cfg.Config.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := headers.Process(w, r); err != nil {
				cfg.Logger.Warn("security headers rejected request", slog.String("host", r.Host), slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
