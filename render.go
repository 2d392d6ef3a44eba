package inkwell

import (
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/inkwell/views"
)

// TemplateFunc builds the templ component for a named template.
type TemplateFunc func(site views.Site, p views.Params) templ.Component

// DefaultTemplates returns the built-in templates. Sites can replace any of
// them through WithTemplates.
func DefaultTemplates() map[string]TemplateFunc {
	return map[string]TemplateFunc{
		TemplateIndex:       views.Blog,
		TemplatePost:        views.BlogPost,
		TemplateLabel:       views.Label,
		TemplateProfile:     views.Profile,
		TemplateLogin:       views.Login,
		TemplateDashboard:   views.Dashboard,
		TemplateNotFound:    views.NotFound,
		TemplateServerError: views.ServerError,
	}
}

// TemplateRenderer is an echo.Renderer that resolves template names to
// templ components. Data must be a views.Params or nil.
type TemplateRenderer struct {
	Site      views.Site
	Templates map[string]TemplateFunc
}

func (r *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	fn, ok := r.Templates[name]
	if !ok {
		return fmt.Errorf("inkwell: unknown template %q", name)
	}
	var params views.Params
	if data != nil {
		p, ok := data.(views.Params)
		if !ok {
			return fmt.Errorf("inkwell: template %q: data has type %T, want views.Params", name, data)
		}
		params = p
	}
	return fn(r.Site, params).Render(c.Request().Context(), w)
}
