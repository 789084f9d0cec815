package api

import (
	"context"

	"github.com/fulldump/box"

	"github.com/populatedb/populatedb/populate"
	"github.com/populatedb/populatedb/relation"
)

type populateRequest struct {
	Filter         map[string]any `json:"filter"`
	SuppressErrors bool           `json:"suppressErrors"`
}

type populateResponse struct {
	Processed int             `json:"processed"`
	Skipped   int             `json:"skipped"`
	Errors    []populateIssue `json:"errors"`
}

type populateIssue struct {
	Key   map[string]any `json:"key"`
	Error string         `json:"error"`
}

func populateStage(ctx context.Context, input *populateRequest) (*populateResponse, error) {

	s := GetServicer(ctx)
	stageName := box.GetUrlParameter(ctx, "stageName")

	options := &populate.Options{
		SuppressErrors: input.SuppressErrors,
	}
	if len(input.Filter) > 0 {
		options.Restriction = relation.Filter(input.Filter)
	}

	report, err := s.Populate(ctx, stageName, options)
	if err != nil {
		return nil, err
	}

	response := &populateResponse{
		Processed: report.Processed,
		Skipped:   report.Skipped,
		Errors:    []populateIssue{},
	}
	for _, keyError := range report.Errors {
		response.Errors = append(response.Errors, populateIssue{
			Key:   keyError.Key.Map(),
			Error: keyError.Err.Error(),
		})
	}

	return response, nil
}
