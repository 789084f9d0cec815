package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fulldump/box"

	"github.com/populatedb/populatedb/key"
)

type insertRequest struct {
	Key     map[string]any  `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

func insert(ctx context.Context, w http.ResponseWriter, input *insertRequest) error {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")

	if len(input.Key) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		return fmt.Errorf("key is required")
	}

	payload := input.Payload
	if payload == nil {
		payload = json.RawMessage(`{}`)
	}

	err := s.Insert(tableName, key.FromMap(input.Key), payload)
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusCreated)
	return nil
}
