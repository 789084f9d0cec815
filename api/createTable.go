package api

import (
	"context"
	"net/http"

	"github.com/populatedb/populatedb/service"
)

type createTableRequest struct {
	Name string `json:"name"`
}

func createTable(ctx context.Context, w http.ResponseWriter, input *createTableRequest) (*service.TableInfo, error) {

	s := GetServicer(ctx)

	info, err := s.CreateTable(input.Name)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return info, nil
}
