package errors

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type panicBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Error   string `json:"error,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// Recoverer turns a handler panic into a logged 500. With showDetail the
// panic value and stack are included in the body; production leaves them out.
func Recoverer(logger *zap.Logger, showDetail bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				stack := debug.Stack()
				logger.Error("panic serving request",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.ByteString("stack", stack))

				body := panicBody{Message: "Internal server error", Code: respond.CodeInternal}
				if showDetail {
					body.Error = fmt.Sprint(rec)
					body.Stack = string(stack)
				}
				respond.JSON(w, http.StatusInternalServerError, body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
