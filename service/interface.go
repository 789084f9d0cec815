package service

import (
	"context"
	"errors"

	"github.com/populatedb/populatedb/key"
	"github.com/populatedb/populatedb/populate"
	"github.com/populatedb/populatedb/storage"
)

var ErrorTableNotFound = errors.New("table not found")
var ErrorTableAlreadyExists = errors.New("table already exists")
var ErrorStageNotFound = errors.New("stage not found")

type TableInfo struct {
	Name string `json:"name"`
	Keys int    `json:"keys"`
	Rows int    `json:"rows"`
}

type Servicer interface {
	CreateTable(name string) (*TableInfo, error)
	GetTable(name string) (*storage.Table, error)
	GetTableInfo(name string) (*TableInfo, error)
	ListTables() ([]*TableInfo, error)
	Insert(name string, k key.Key, payload any) error
	RegisterStage(name string, target string, maker populate.Maker) (*Stage, error)
	GetStage(name string) (*Stage, error)
	ListStages() []*Stage
	Populate(ctx context.Context, stage string, options *populate.Options) (*populate.Report, error)
}
