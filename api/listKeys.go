package api

import (
	"context"

	"github.com/fulldump/box"
)

func listKeys(ctx context.Context) ([]map[string]any, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")

	table, err := s.GetTable(tableName)
	if err != nil {
		return nil, err
	}

	keys, err := table.Keys()
	if err != nil {
		return nil, err
	}

	result := []map[string]any{}
	for _, k := range keys {
		result = append(result, k.Map())
	}

	return result, nil
}
