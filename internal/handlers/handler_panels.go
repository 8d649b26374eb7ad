package handlers

import (
	"dashcache/internal/middlewares"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func GETPanels(ctx *middlewares.AppContext) {
	ctx.WriteJSON(http.StatusOK, ctx.Panels.Summaries())
}

// GETPanel returns the latest refresh of one configured panel.
func GETPanel(ctx *middlewares.AppContext) {
	name := chi.URLParam(ctx.Request, "name")

	result, ok := ctx.Panels.Get(name)
	if !ok {
		if configured(ctx, name) {
			ctx.SetJSONError(http.StatusServiceUnavailable, "panel has not been refreshed yet")
			return
		}
		ctx.SetJSONError(http.StatusNotFound, "panel not found")
		return
	}

	ctx.WriteJSON(http.StatusOK, result)
}

func configured(ctx *middlewares.AppContext, name string) bool {
	for _, p := range ctx.Config.Data.Panels {
		if p.Name == name && !p.Disabled {
			return true
		}
	}
	return false
}
