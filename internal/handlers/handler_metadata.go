package handlers

import (
	"dashcache/internal/datasource"
	"dashcache/internal/middlewares"
	"dashcache/internal/models"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func GETQueryTypes(ctx *middlewares.AppContext) {
	ctx.WriteJSON(http.StatusOK, models.QueryTypeInfos)
}

// GETMetrics lists metric names. Query parameters: filter, dimensions ("k=v;k2=v2").
func GETMetrics(ctx *middlewares.AppContext) {
	q := ctx.Request.URL.Query()
	values, err := ctx.DataSource.ListMetrics(ctx, dimensionsParam(q.Get("dimensions")), q.Get("filter"))
	writeList(ctx, values, err)
}

func GETDimensionKeys(ctx *middlewares.AppContext) {
	q := ctx.Request.URL.Query()
	values, err := ctx.DataSource.ListDimensionKeys(ctx, q.Get("filter"), dimensionsParam(q.Get("dimensions")))
	writeList(ctx, values, err)
}

func GETDimensionValues(ctx *middlewares.AppContext) {
	q := ctx.Request.URL.Query()
	key := chi.URLParam(ctx.Request, "key")
	values, err := ctx.DataSource.ListDimensionValues(ctx, key, q.Get("filter"), dimensionsParam(q.Get("dimensions")))
	writeList(ctx, values, err)
}

func writeList(ctx *middlewares.AppContext, values []string, err error) {
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		ctx.Logger.Warn("listing failed", "path", ctx.Request.URL.Path, "error", err)
		if errors.Is(err, datasource.ErrNoData) {
			ctx.WriteJSON(http.StatusOK, ListResult{Values: []string{}})
			return
		}
		ctx.SetJSONError(http.StatusBadGateway, err.Error())
		return
	}

	if values == nil {
		values = []string{}
	}
	ctx.WriteJSON(http.StatusOK, ListResult{Values: values})
}
