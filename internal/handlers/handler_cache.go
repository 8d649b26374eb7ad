package handlers

import (
	"dashcache/internal/middlewares"
	"net/http"
	"sort"
)

func GETCacheStats(ctx *middlewares.AppContext) {
	c := ctx.DataSource.Cache()
	if c == nil {
		ctx.WriteJSON(http.StatusOK, CacheStats{Keys: []string{}})
		return
	}

	keys := c.Keys(ctx)
	sort.Strings(keys)

	ctx.WriteJSON(http.StatusOK, CacheStats{
		Enabled: true,
		Size:    c.Size(ctx),
		Keys:    keys,
	})
}
