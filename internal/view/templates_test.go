package view

import (
	"html/template"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "1,247", FormatNumber(1247))
	assert.Equal(t, "12,450", FormatNumber(12450))
	assert.Equal(t, "0.8", FormatNumber(0.8))
	assert.Equal(t, "1,247", FormatCount(1247))
	assert.Equal(t, "$567,000", FormatCurrency(567000))
	assert.Equal(t, "$9,540", FormatCurrency(9539.6))
	assert.Equal(t, "39.3%", FormatPercent(39.3))
	assert.Equal(t, "114%", FormatPercent(114))
}

func TestWidthStyleClamps(t *testing.T) {
	assert.Equal(t, template.CSS("width: 100%"), WidthStyle(114))
	assert.Equal(t, template.CSS("width: 0%"), WidthStyle(-3))
	assert.Equal(t, template.CSS("width: 39.3%"), WidthStyle(39.3))
}

func TestRenderSetsContentType(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	require.NoError(t, engine.Render(rr, "partials/placeholder.html", TemplateData{Data: map[string]string{"Heading": "Courses"}}))
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "Courses")
}

func TestNilEngine(t *testing.T) {
	var engine *Engine
	assert.Error(t, engine.Render(httptest.NewRecorder(), "x", TemplateData{}))
}
