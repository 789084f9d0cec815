package api

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/populatedb/populatedb/service"
)

func Build(s service.Servicer, version string) *box.B {

	b := box.NewBox()

	v1 := b.Resource("/v1")

	v1.Resource("/tables").
		WithActions(
			box.Get(listTables),
			box.Post(createTable),
		)

	v1.Resource("/tables/{tableName}").
		WithActions(
			box.Get(getTable),
			box.ActionPost(insert),
		)

	v1.Resource("/tables/{tableName}/keys").
		WithActions(
			box.Get(listKeys),
		)

	v1.Resource("/stages").
		WithActions(
			box.Get(listStages),
		)

	v1.Resource("/stages/{stageName}").
		WithActions(
			box.Get(getStage),
			box.ActionPost(populateStage).WithName("populate"),
		)

	b.Resource("/version").
		WithActions(
			box.Get(func(w http.ResponseWriter) {
				w.Write([]byte(version))
			}),
		)

	b.WithInterceptors(injectServicer(s))

	return b
}

func injectServicer(s service.Servicer) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			next(SetServicer(ctx, s))
		}
	}
}
