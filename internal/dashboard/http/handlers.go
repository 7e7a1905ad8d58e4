package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dtca-portal/dtca-portal/internal/analytics/export"
	"github.com/dtca-portal/dtca-portal/internal/analytics/ui"
	"github.com/dtca-portal/dtca-portal/internal/dashboard"
	"github.com/dtca-portal/dtca-portal/internal/fixtures"
	"github.com/dtca-portal/dtca-portal/internal/platform/httpx"
	"github.com/dtca-portal/dtca-portal/internal/shared"
	"github.com/dtca-portal/dtca-portal/internal/view"
)

const requestTimeout = 2 * time.Second

// Navigation kinds reported to the NavigationRecorder.
const (
	KindView      = "view"
	KindAnalytics = "analytics"
	KindSidebar   = "sidebar"
	KindTheme     = "theme"
	KindReset     = "reset"
)

// DashboardService defines the view-model contract used by the handler.
type DashboardService interface {
	Page(ctx context.Context, state dashboard.State) (ui.PageViewModel, error)
	StudentRecords() []fixtures.StudentRecord
	ExportSections(sub dashboard.AnalyticsSubView) ([]export.Section, error)
}

// NavigationRecorder counts accepted state transitions.
type NavigationRecorder interface {
	RecordNavigation(kind, value string)
}

// Handler serves the dashboard page, its state transitions and exports.
type Handler struct {
	logger         *slog.Logger
	service        DashboardService
	templates      *view.Engine
	csrf           *shared.CSRFManager
	nav            NavigationRecorder
	allowedOrigins []string
	csvPool        sync.Pool
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService, templates *view.Engine, csrf *shared.CSRFManager, nav NavigationRecorder) *Handler {
	h := &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		nav:       nav,
	}
	h.csvPool.New = func() any { return new(bytes.Buffer) }
	return h
}

// WithAllowedOrigins enables cross-origin access to the state API.
func (h *Handler) WithAllowedOrigins(origins []string) {
	h.allowedOrigins = origins
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	router := dashboard.RouterFromSession(shared.SessionFromContext(r.Context()))
	h.render(w, r, "pages/dashboard.html", router.Snapshot())
}

func (h *Handler) handleSelectView(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, KindView, func(router *dashboard.Router) (string, error) {
		v, err := dashboard.ParseView(r.PostFormValue("view"))
		if err != nil {
			return "", err
		}
		return v.String(), router.SelectView(v)
	})
}

func (h *Handler) handleSelectSubView(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, KindAnalytics, func(router *dashboard.Router) (string, error) {
		sub, err := dashboard.ParseAnalyticsSubView(r.PostFormValue("sub"))
		if err != nil {
			return "", err
		}
		return sub.String(), router.SelectAnalyticsSubView(sub)
	})
}

func (h *Handler) handleToggleSidebar(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, KindSidebar, func(router *dashboard.Router) (string, error) {
		router.ToggleSidebar()
		return sidebarValue(router.UiToggleState()), nil
	})
}

func (h *Handler) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, KindTheme, func(router *dashboard.Router) (string, error) {
		router.ToggleTheme()
		return themeValue(router.UiToggleState()), nil
	})
}

func sidebarValue(toggles dashboard.UiToggleState) string {
	if toggles.SidebarExpanded {
		return "expanded"
	}
	return "collapsed"
}

func themeValue(toggles dashboard.UiToggleState) string {
	if toggles.DarkTheme {
		return "dark"
	}
	return "light"
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Destroy()
	}
	h.recordNavigation(KindReset, "initial")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// mutate loads the session's router, applies one transition and persists
// the result. A rejected transition leaves the session untouched.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, kind string, apply func(*dashboard.Router) (string, error)) {
	sess := shared.SessionFromContext(r.Context())
	router := dashboard.RouterFromSession(sess)
	value, err := apply(router)
	if err != nil {
		if errors.Is(err, dashboard.ErrInvalidArgument) {
			h.logDebug("rejected "+kind, err)
			http.Error(w, "invalid "+kind, http.StatusBadRequest)
			return
		}
		h.handleServerError(w, "apply "+kind, err)
		return
	}
	state := router.Snapshot()
	dashboard.SaveState(sess, state)
	h.recordNavigation(kind, value)

	if !isPartialRequest(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "partials/app.html", state)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, state dashboard.State) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	page, err := h.service.Page(ctx, state)
	if err != nil {
		h.handleServerError(w, "build page", err)
		return
	}
	data := view.TemplateData{
		Title:       page.Heading + " | DTCA Portal",
		CSRFToken:   h.csrfToken(r),
		CurrentPath: r.URL.Path,
		Data:        page,
	}
	if err := h.templates.Render(w, name, data); err != nil {
		h.logError("render template", err)
	}
}

type stateRequest struct {
	View            *string `json:"view"`
	Analytics       *string `json:"analytics"`
	SidebarExpanded *bool   `json:"sidebar_expanded"`
	DarkTheme       *bool   `json:"dark_theme"`
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	router := dashboard.RouterFromSession(shared.SessionFromContext(r.Context()))
	httpx.JSON(w, http.StatusOK, router.Snapshot())
}

// handlePutState applies every field of the request or none of them.
func (h *Handler) handlePutState(w http.ResponseWriter, r *http.Request) {
	var req stateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Request", "request body must be a JSON object")
		return
	}
	sess := shared.SessionFromContext(r.Context())
	router := dashboard.RouterFromSession(sess)

	if req.View != nil {
		v, err := dashboard.ParseView(*req.View)
		if err == nil {
			err = router.SelectView(v)
		}
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrValidation, err))
			return
		}
	}
	if req.Analytics != nil {
		sub, err := dashboard.ParseAnalyticsSubView(*req.Analytics)
		if err == nil {
			err = router.SelectAnalyticsSubView(sub)
		}
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrValidation, err))
			return
		}
	}
	sidebarFlipped := req.SidebarExpanded != nil && *req.SidebarExpanded != router.UiToggleState().SidebarExpanded
	if sidebarFlipped {
		router.ToggleSidebar()
	}
	themeFlipped := req.DarkTheme != nil && *req.DarkTheme != router.UiToggleState().DarkTheme
	if themeFlipped {
		router.ToggleTheme()
	}

	state := router.Snapshot()
	dashboard.SaveState(sess, state)
	if req.View != nil {
		h.recordNavigation(KindView, state.View.String())
	}
	if req.Analytics != nil {
		h.recordNavigation(KindAnalytics, state.Analytics.String())
	}
	if sidebarFlipped {
		h.recordNavigation(KindSidebar, sidebarValue(state.UiToggleState))
	}
	if themeFlipped {
		h.recordNavigation(KindTheme, themeValue(state.UiToggleState))
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) handleStudentsCSV(w http.ResponseWriter, r *http.Request) {
	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteStudentsCSV(buf, h.service.StudentRecords()); err != nil {
		h.handleServerError(w, "write students csv", err)
		return
	}
	h.streamCSV(w, "students.csv", buf)
}

func (h *Handler) handleAnalyticsCSV(w http.ResponseWriter, r *http.Request) {
	sub, err := dashboard.ParseAnalyticsSubView(chi.URLParam(r, "sub"))
	if err != nil {
		http.Error(w, "invalid analytics", http.StatusBadRequest)
		return
	}
	sections, err := h.service.ExportSections(sub)
	if err != nil {
		h.handleServerError(w, "export sections", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteSeriesCSV(buf, sections); err != nil {
		h.handleServerError(w, "write series csv", err)
		return
	}
	h.streamCSV(w, "analytics-"+sub.String()+".csv", buf)
}

func (h *Handler) streamCSV(w http.ResponseWriter, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) csrfToken(r *http.Request) string {
	if h.csrf == nil {
		return ""
	}
	token, err := h.csrf.Token(shared.SessionFromContext(r.Context()))
	if err != nil {
		h.logError("csrf token", err)
		return ""
	}
	return token
}

func (h *Handler) recordNavigation(kind, value string) {
	if h.nav != nil {
		h.nav.RecordNavigation(kind, value)
	}
}

func isPartialRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

func (h *Handler) logDebug(context string, err error) {
	if h.logger != nil {
		h.logger.Debug(context, slog.Any("error", err))
	}
}
