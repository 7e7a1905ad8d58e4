package view

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"net/http"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dtca-portal/dtca-portal/internal/presenter"
	"github.com/dtca-portal/dtca-portal/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	CurrentPath string
	Data        any
}

var printer = message.NewPrinter(language.English)

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	tpl, err := template.New("root").Funcs(Funcs()).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Funcs returns the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatNumber":   FormatNumber,
		"formatCount":    FormatCount,
		"formatCurrency": FormatCurrency,
		"formatPercent":  FormatPercent,
		"initials":       presenter.Initials,
		"statusClass":    presenter.StatusClass,
		"widthStyle":     WidthStyle,
	}
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// Execute writes a named template to any writer.
func (e *Engine) Execute(w io.Writer, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	return e.templates.ExecuteTemplate(w, name, data)
}

// FormatNumber groups thousands: 1247 -> "1,247".
func FormatNumber(v float64) string {
	if v == math.Trunc(v) {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.1f", v)
}

// FormatCount groups thousands of an integer count.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatCurrency renders whole dollars: 567000 -> "$567,000".
func FormatCurrency(v float64) string {
	return printer.Sprintf("$%d", int64(math.Round(v)))
}

// FormatPercent trims trailing zeros: 39.30 -> "39.3%".
func FormatPercent(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64) + "%"
}

// WidthStyle produces an inline width declaration for bar fills. The value
// is clamped to [0, 100].
func WidthStyle(percent float64) template.CSS {
	w := presenter.BarWidthPercent(percent)
	return template.CSS("width: " + strconv.FormatFloat(math.Round(w*100)/100, 'f', -1, 64) + "%")
}
