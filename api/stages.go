package api

import (
	"context"

	"github.com/fulldump/box"

	"github.com/populatedb/populatedb/service"
)

type StageResponse struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

func stageResponse(stage *service.Stage) *StageResponse {
	return &StageResponse{
		Name:   stage.Name,
		Target: stage.Target.Name(),
	}
}

func listStages(ctx context.Context) ([]*StageResponse, error) {

	s := GetServicer(ctx)

	result := []*StageResponse{}
	for _, stage := range s.ListStages() {
		result = append(result, stageResponse(stage))
	}

	return result, nil
}

func getStage(ctx context.Context) (*StageResponse, error) {

	s := GetServicer(ctx)
	stageName := box.GetUrlParameter(ctx, "stageName")

	stage, err := s.GetStage(stageName)
	if err != nil {
		return nil, err
	}

	return stageResponse(stage), nil
}
