package api

import (
	"context"

	"github.com/fulldump/box"

	"github.com/populatedb/populatedb/service"
)

func getTable(ctx context.Context) (*service.TableInfo, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")

	return s.GetTableInfo(tableName)
}
