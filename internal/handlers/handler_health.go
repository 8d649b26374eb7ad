package handlers

import (
	"dashcache/internal/middlewares"
	"dashcache/internal/version"
	"net/http"
)

func HandlerHealth(ctx *middlewares.AppContext) {
	ctx.WriteJSON(http.StatusOK, map[string]string{
		"status":  "OK",
		"version": version.GetVersion(),
	})
}
