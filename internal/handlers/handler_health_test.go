package handlers

import (
	"dashcache/internal/middlewares"
	"dashcache/internal/testutil"
	"testing"
)

func TestHandlerHealth(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/api/v1/health")
	defer tc.Finish()

	tc.CallHandler(HandlerHealth)

	tc.AssertStatus(t, 200)
	tc.AssertContentType(t, "application/json")
	tc.AssertJSONString(t, "status", "OK")
	tc.AssertJSONString(t, "version", "dev")
}

func TestHandlerError(t *testing.T) {
	tc := testutil.NewTestContextWithURL(t, "GET", "/error")
	defer tc.Finish()

	errorHandler := func(ctx *middlewares.AppContext) {
		ctx.SetJSONError(400, "Bad Request")
	}

	tc.CallHandler(errorHandler)

	tc.AssertStatus(t, 400)
	tc.AssertJSONString(t, "error", "Bad Request")
}
