package api

import (
	"context"

	"github.com/populatedb/populatedb/service"
)

func listTables(ctx context.Context) ([]*service.TableInfo, error) {

	s := GetServicer(ctx)

	return s.ListTables()
}
