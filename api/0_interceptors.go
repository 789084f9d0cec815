package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fulldump/box"
	"github.com/rs/zerolog"

	"github.com/populatedb/populatedb/relation"
	"github.com/populatedb/populatedb/service"
)

const ContextServicerKey = "a7a9f7de-58cf-4d1c-a3f1-9f0cba910bd1"

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, ContextServicerKey, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	return ctx.Value(ContextServicerKey).(service.Servicer)
}

var RecoverFromPanic = box.RecoverFromPanic

func AccessLog(logger zerolog.Logger) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			r := box.GetRequest(ctx)
			now := time.Now()
			defer func() {
				logger.Info().
					Str("remote", formatRemoteAddr(r)).
					Str("method", r.Method).
					Str("url", r.URL.String()).
					Dur("elapsed", time.Since(now)).
					Msg("access")
			}()
			next(ctx)
		}
	}
}

func formatRemoteAddr(r *http.Request) string {

	xorigin := strings.TrimSpace(strings.Split(
		r.Header.Get("X-Forwarded-For"), ",")[0])
	if xorigin != "" {
		return xorigin
	}

	i := strings.LastIndex(r.RemoteAddr, ":")
	if i < 0 {
		return r.RemoteAddr
	}
	return r.RemoteAddr[0:i]
}

func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}
		w := box.GetResponse(ctx)

		writeError := func(status int, description string) {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{
					"message":     err.Error(),
					"description": description,
				},
			})
		}

		if err == box.ErrResourceNotFound {
			writeError(http.StatusNotFound, fmt.Sprintf("resource '%s' not found", box.GetRequest(ctx).URL.String()))
			return
		}

		if err == box.ErrMethodNotAllowed {
			writeError(http.StatusMethodNotAllowed, fmt.Sprintf("method '%s' not allowed", box.GetRequest(ctx).Method))
			return
		}

		if errors.Is(err, service.ErrorTableNotFound) || errors.Is(err, service.ErrorStageNotFound) {
			writeError(http.StatusNotFound, "check the name and the registered stages/tables")
			return
		}

		if errors.Is(err, service.ErrorTableAlreadyExists) {
			writeError(http.StatusConflict, "pick a different name")
			return
		}

		if errors.Is(err, relation.ErrInvalidRelation) {
			writeError(http.StatusBadRequest, "the stage's populate relation is not usable")
			return
		}

		if _, ok := err.(*json.SyntaxError); ok {
			writeError(http.StatusBadRequest, "malformed JSON")
			return
		}

		writeError(http.StatusInternalServerError, "unexpected error")
	}
}
