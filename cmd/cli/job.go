package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"epistack/adapters/datareadiness/coercer"
	"epistack/adapters/excel"
	"epistack/adapters/postgres"
	"epistack/adapters/stats/factor"
	"epistack/adapters/stats/htest"
	"epistack/app"
	"epistack/domain/core"
	"epistack/internal"
	"epistack/internal/config"
	apperrors "epistack/internal/errors"
	"epistack/ports"

	"github.com/jmoiron/sqlx"
)

// job is one tabulation: a dataset source, a variable selection and options
type job struct {
	Name    string     `yaml:"name"`
	File    string     `yaml:"file"`
	Sheet   string     `yaml:"sheet"`
	Query   string     `yaml:"query"`
	Vars    string     `yaml:"vars"`
	RunID   string     `yaml:"run_id"` // empty generates one
	Options optionSet `yaml:",inline"`
}

// jobResult is a finished job ready to render
type jobResult struct {
	job    job
	runID  core.RunID
	result *app.Result
}

// runner executes jobs against one engine. The database handle is opened on
// first use and shared.
type runner struct {
	cfg    *config.Config
	engine *app.Engine
	logger *internal.Logger

	mu sync.Mutex
	db *sqlx.DB
}

func newRunner(cfg *config.Config, logger *internal.Logger) *runner {
	engine := app.NewEngine(htest.NewBattery(), factor.NewExtractor(), logger)
	return &runner{cfg: cfg, engine: engine, logger: logger}
}

func (r *runner) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		r.db.Close()
		r.db = nil
	}
}

func (r *runner) coercion() coercer.CoercionConfig {
	cfg := coercer.DefaultCoercionConfig()
	cfg.MissingTokens = r.cfg.Data.MissingTokens
	return cfg
}

// source picks the dataset adapter of j. Relative file paths resolve
// against baseDir.
func (r *runner) source(ctx context.Context, baseDir string, j job) (ports.DatasetSourcePort, error) {
	switch {
	case j.File != "" && j.Query != "":
		return nil, apperrors.InvalidInput("file and query are mutually exclusive")
	case j.File != "":
		path := j.File
		if baseDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		cfg := excel.DefaultExcelConfig(path)
		cfg.Sheet = j.Sheet
		cfg.CoercionConfig = r.coercion()
		return excel.NewDataReader(cfg, r.logger), nil
	case j.Query != "":
		db, err := r.database(ctx)
		if err != nil {
			return nil, err
		}
		return postgres.NewQuerySource(db, r.coercion(), r.logger, j.Query), nil
	}
	return nil, apperrors.InvalidInput("a file or a query is required")
}

func (r *runner) database(ctx context.Context) (*sqlx.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		return r.db, nil
	}
	if r.cfg.Database.URL == "" {
		return nil, apperrors.ConfigInvalid("DATABASE_URL is required for query sources")
	}
	db, err := postgres.Open(ctx, r.cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

// run loads the dataset of j and tabulates it
func (r *runner) run(ctx context.Context, baseDir string, j job) (*jobResult, error) {
	start := time.Now()
	runID := core.NewRunID()
	if j.RunID != "" {
		parsed, err := core.ParseRunID(j.RunID)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		runID = parsed
	}

	if j.Vars == "" {
		return nil, apperrors.InvalidInput("vars is required")
	}
	vars, err := app.ParseSelection(j.Vars)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("vars: %v", err))
	}
	base, err := baseOptions(r.cfg)
	if err != nil {
		return nil, err
	}
	opts, err := j.Options.apply(base)
	if err != nil {
		return nil, err
	}

	src, err := r.source(ctx, baseDir, j)
	if err != nil {
		return nil, err
	}
	frame, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}

	res, err := r.engine.Stack(frame, vars, opts)
	if err != nil {
		return nil, apperrors.FromDomain(err)
	}
	r.logger.Info("run %s: %s from %s, %d rows, %d warnings in %s",
		runID, j.title(), src.Describe(), len(res.Rows), len(res.Warnings), time.Since(start))
	return &jobResult{job: j, runID: runID, result: res}, nil
}

func (j job) title() string {
	if j.Name != "" {
		return j.Name
	}
	return j.Vars
}
