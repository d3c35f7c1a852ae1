// Package catalog resolves, loads, and memoizes the experiment datasets.
//
// The data directory is treated as immutable for the process lifetime, so
// every outcome — including a missing file — is cached until an explicit
// Refresh. That mirrors how the dashboard is operated: data is copied in
// once, the server is started, and nobody touches the directory afterwards.
package catalog

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kominz1028-maker/polar-plant-dashboard/internal/config"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/models"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/resolver"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/tabular"
)

// Result is a memoized load outcome. Exactly one of Table or Err is set;
// Warnings may accompany a usable table.
type Result struct {
	Path     string
	Table    *models.Table
	Warnings []models.Warning
	Err      error
}

type cacheKey struct {
	op  string
	key string
	ext string
}

// Catalog owns the data directory and hands out loaded datasets.
type Catalog struct {
	dataDir    string
	experiment *config.Experiment

	mu       sync.Mutex
	snapshot string
	cache    map[cacheKey]*Result
}

// New creates a catalog over a data directory. The directory is not
// required to exist; lookups against a missing directory resolve to
// not-found results.
func New(dataDir string, exp *config.Experiment) *Catalog {
	return &Catalog{
		dataDir:    dataDir,
		experiment: exp,
		snapshot:   uuid.New().String(),
		cache:      make(map[cacheKey]*Result),
	}
}

// Experiment returns the experiment description the catalog serves.
func (c *Catalog) Experiment() *config.Experiment {
	return c.experiment
}

// DataDir returns the data directory path.
func (c *Catalog) DataDir() string {
	return c.dataDir
}

// Snapshot identifies the current cache generation. It changes only on
// Refresh, so clients can tell whether two responses are comparable.
func (c *Catalog) Snapshot() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Refresh drops every memoized result and rotates the snapshot ID.
func (c *Catalog) Refresh() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[cacheKey]*Result)
	c.snapshot = uuid.New().String()
	return c.snapshot
}

// EnvData returns one school's environment readings, loading and
// memoizing on first use. The school name is the dataset key; the on-disk
// filename may be in either Unicode normalization form.
func (c *Catalog) EnvData(school string) *Result {
	return c.memoize(cacheKey{op: "env", key: school, ext: ".csv"}, func() *Result {
		path, err := resolver.Resolve(c.dataDir, school, ".csv")
		if err != nil {
			return &Result{Err: fmt.Errorf("%s %s: %w", school, c.experiment.EnvFileMarker, err)}
		}
		table, warnings, err := tabular.LoadCSV(path, models.EnvColTime)
		if err != nil {
			return &Result{Path: path, Err: err}
		}
		for i := range warnings {
			warnings[i].Dataset = school
		}
		return &Result{Path: path, Table: table, Warnings: warnings}
	})
}

// GrowthCombined returns the growth workbook's first sheet. Used when the
// workbook holds all individuals in one sheet with no school column.
func (c *Catalog) GrowthCombined() *Result {
	return c.memoize(cacheKey{op: "growth-combined", key: c.experiment.GrowthFileKey, ext: ".xlsx"}, func() *Result {
		path, err := c.growthPath()
		if err != nil {
			return &Result{Err: err}
		}
		table, err := tabular.LoadSingleSheet(path, "")
		if err != nil {
			return &Result{Path: path, Err: err}
		}
		return &Result{Path: path, Table: table}
	})
}

// GrowthBySchool selects the sheet named after one school. Only
// meaningful for per-school workbooks.
func (c *Catalog) GrowthBySchool(school string) *Result {
	return c.memoize(cacheKey{op: "growth-sheet", key: school, ext: ".xlsx"}, func() *Result {
		path, err := c.growthPath()
		if err != nil {
			return &Result{Err: err}
		}
		table, err := tabular.LoadSingleSheet(path, school)
		if err != nil {
			return &Result{Path: path, Err: err}
		}
		return &Result{Path: path, Table: table}
	})
}

// GrowthAllTagged concatenates every sheet of the growth workbook,
// tagging rows with their sheet (school) name.
func (c *Catalog) GrowthAllTagged() *Result {
	return c.memoize(cacheKey{op: "growth-all", key: c.experiment.GrowthFileKey, ext: ".xlsx"}, func() *Result {
		path, err := c.growthPath()
		if err != nil {
			return &Result{Err: err}
		}
		table, err := tabular.LoadAllSheetsTagged(path, models.GrowthColSchool)
		if err != nil {
			return &Result{Path: path, Err: err}
		}
		return &Result{Path: path, Table: table}
	})
}

// Growth returns the whole growth dataset under the configured sheet mode.
func (c *Catalog) Growth() *Result {
	if c.experiment.GrowthSheetMode == config.SheetModePerSchool {
		return c.GrowthAllTagged()
	}
	return c.GrowthCombined()
}

func (c *Catalog) growthPath() (string, error) {
	path, err := resolver.Resolve(c.dataDir, c.experiment.GrowthFileKey, ".xlsx")
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.experiment.GrowthFileKey, err)
	}
	return path, nil
}

// memoize returns the cached result for k, computing it at most once per
// snapshot generation.
func (c *Catalog) memoize(k cacheKey, load func() *Result) *Result {
	c.mu.Lock()
	if r, ok := c.cache[k]; ok {
		c.mu.Unlock()
		return r
	}
	c.mu.Unlock()

	r := load()

	c.mu.Lock()
	defer c.mu.Unlock()
	// A concurrent request may have loaded the same key; the first stored
	// result wins so repeated calls stay identical.
	if prev, ok := c.cache[k]; ok {
		return prev
	}
	c.cache[k] = r
	return r
}
