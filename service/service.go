package service

import (
	"context"
	"sync"

	"github.com/populatedb/populatedb/key"
	"github.com/populatedb/populatedb/populate"
	"github.com/populatedb/populatedb/storage"
	"github.com/populatedb/populatedb/utils"
)

// Service exposes named tables and computed stages over one store. Source
// tables are fed through Insert, computed stages are registered with a maker
// and filled through Populate.
type Service struct {
	store    *storage.Store
	catalog  *storage.Table
	observer populate.Observer

	mutex  sync.Mutex
	tables map[string]*storage.Table
	stages map[string]*Stage
}

// Stage is a computed table bound to its maker. Stages live in memory, they
// are code, not data.
type Stage struct {
	Name      string
	Target    *storage.Table
	populator *populate.Populator
}

func NewService(store *storage.Store, observer populate.Observer) (*Service, error) {

	catalog, err := storage.NewTable(store, "catalog")
	if err != nil {
		return nil, err
	}

	s := &Service{
		store:    store,
		catalog:  catalog,
		observer: observer,
		tables:   map[string]*storage.Table{},
		stages:   map[string]*Stage{},
	}

	// reopen the tables created on previous runs
	entries, err := catalog.Keys()
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		value, exists := entry.Get("name")
		if !exists {
			continue
		}
		name, ok := value.(string)
		if !ok {
			continue
		}
		table, err := storage.NewTable(store, name)
		if err != nil {
			return nil, err
		}
		s.tables[name] = table
	}

	return s, nil
}

func (s *Service) CreateTable(name string) (*TableInfo, error) {

	if name == "catalog" { // reserved
		return nil, ErrorTableAlreadyExists
	}

	table, err := storage.NewTable(s.store, name)
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.tables[name]; exists {
		return nil, ErrorTableAlreadyExists
	}

	err = s.store.Update(func(tx *storage.Txn) error {
		return s.catalog.Mark(tx, key.New(key.Attr{Name: "name", Value: name}))
	})
	if err != nil {
		return nil, err
	}

	s.tables[name] = table

	return &TableInfo{Name: name}, nil
}

func (s *Service) GetTable(name string) (*storage.Table, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	table, exists := s.tables[name]
	if !exists {
		return nil, ErrorTableNotFound
	}
	return table, nil
}

func (s *Service) GetTableInfo(name string) (*TableInfo, error) {

	table, err := s.GetTable(name)
	if err != nil {
		return nil, err
	}

	return tableInfo(table)
}

func (s *Service) ListTables() ([]*TableInfo, error) {

	s.mutex.Lock()
	tables := make([]*storage.Table, 0, len(s.tables))
	for _, name := range utils.GetKeys(s.tables) {
		tables = append(tables, s.tables[name])
	}
	s.mutex.Unlock()

	result := []*TableInfo{}
	for _, table := range tables {
		info, err := tableInfo(table)
		if err != nil {
			return nil, err
		}
		result = append(result, info)
	}

	return result, nil
}

func tableInfo(table *storage.Table) (*TableInfo, error) {
	keys, err := table.Count()
	if err != nil {
		return nil, err
	}
	rows, err := table.CountRows()
	if err != nil {
		return nil, err
	}
	return &TableInfo{Name: table.Name(), Keys: keys, Rows: rows}, nil
}

// Insert feeds one row into a source table, marking its key as present.
func (s *Service) Insert(name string, k key.Key, payload any) error {

	table, err := s.GetTable(name)
	if err != nil {
		return err
	}

	return s.store.Update(func(tx *storage.Txn) error {
		return table.Insert(tx, k, payload)
	})
}

// RegisterStage binds a maker to a target table, creating the table if it
// does not exist yet.
func (s *Service) RegisterStage(name string, target string, maker populate.Maker) (*Stage, error) {

	table, err := s.GetTable(target)
	if err == ErrorTableNotFound {
		_, err = s.CreateTable(target)
		if err != nil {
			return nil, err
		}
		table, err = s.GetTable(target)
	}
	if err != nil {
		return nil, err
	}

	populator := populate.NewPopulator(s.store, table, maker)
	populator.Observer = s.observer

	stage := &Stage{
		Name:      name,
		Target:    table,
		populator: populator,
	}

	s.mutex.Lock()
	s.stages[name] = stage
	s.mutex.Unlock()

	return stage, nil
}

func (s *Service) GetStage(name string) (*Stage, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stage, exists := s.stages[name]
	if !exists {
		return nil, ErrorStageNotFound
	}
	return stage, nil
}

func (s *Service) ListStages() []*Stage {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result := []*Stage{}
	for _, name := range utils.GetKeys(s.stages) {
		result = append(result, s.stages[name])
	}
	return result
}

func (s *Service) Populate(ctx context.Context, stage string, options *populate.Options) (*populate.Report, error) {

	st, err := s.GetStage(stage)
	if err != nil {
		return nil, err
	}

	return st.populator.Populate(ctx, options)
}
