package handlers

import (
	"dashcache/internal/middlewares"
	"encoding/json"
	"net/http"
	"time"
)

// POSTQuery runs a panel request and streams every emission as one JSON
// object per line. The stream ends with the terminal Done or Error response.
func POSTQuery(ctx *middlewares.AppContext) {
	request, err := decodeQueryRequest(ctx.Request.Body, time.Now(), ctx.Config.Data)
	if err != nil {
		ctx.SetJSONError(http.StatusBadRequest, err.Error())
		return
	}

	ctx.Response.Header().Set("Content-Type", "application/x-ndjson")
	ctx.Response.Header().Set("Cache-Control", "no-store")
	ctx.Response.WriteHeader(http.StatusOK)

	flusher, _ := ctx.Response.(http.Flusher)
	enc := json.NewEncoder(ctx.Response)

	for rsp := range ctx.DataSource.Query(ctx, request) {
		if err := enc.Encode(rsp); err != nil {
			ctx.Logger.Warn("failed to write query response", "request_id", rsp.Key, "error", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
