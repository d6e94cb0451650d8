package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymops/gymops/internal/navigation"
	"github.com/gymops/gymops/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderFramesNestsContent(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	data := TemplateData{
		Title:       "General Settings",
		CSRFToken:   "tok",
		CurrentPath: "/branchadmin/settings/general",
		Role:        "branchadmin",
		RoleLabel:   "Branch Admin",
		Flash:       &shared.FlashMessage{Kind: "success", Message: "Saved"},
		Menu: []navigation.MenuSection{{
			Label: "Branch Admin",
			Path:  "/branchadmin",
			Items: []navigation.MenuItem{{Label: "General", Path: "/branchadmin/settings/general"}},
		}},
	}
	frames := []Frame{
		{Template: "layouts/app.html", Component: "AppLayout", Title: "GymOps"},
		{Template: "layouts/section.html", Component: "BranchLayout", Title: "Branch Admin"},
		{Template: "pages/screen.html", Component: "GeneralSettings", Title: "General Settings", Props: map[string]string{"role": "branchadmin"}},
	}

	rec := httptest.NewRecorder()
	require.NoError(t, engine.RenderFrames(rec, frames, data))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, `data-component="BranchLayout"`)
	assert.Contains(t, body, `data-component="GeneralSettings"`)
	assert.Contains(t, body, `aria-current="page"`)
	assert.Contains(t, body, "Saved")
	assert.Less(t, strings.Index(body, "BranchLayout"), strings.Index(body, "GeneralSettings"))
}

func TestRenderStatusWritesHeaderOnce(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, engine.RenderStatus(rec, http.StatusNotFound, "pages/not_found.html", TemplateData{CurrentPath: "/nope"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "/nope")
}

func TestRenderUnknownTemplateLeavesResponseUntouched(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, engine.Render(rec, "pages/missing.html", TemplateData{}))
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Type"))
}

func TestRenderFramesRequiresFrames(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	assert.Error(t, engine.RenderFrames(httptest.NewRecorder(), nil, TemplateData{}))
}
