package lifechain

import (
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/database"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/planner"
)

// Config exposes a stable wrapper for store and engine configuration in package mode.
// Zero engine fields take the built-in defaults, except the two thresholds,
// where nil means default and an explicit zero is kept.
type Config struct {
	URL              string
	AuthToken        string
	ProjectsDir      string
	MultiProjectMode bool
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxIdleSec   int
	ConnMaxLifeSec   int

	MinOverlapYears *int
	MinFame         *int
	MaxGapYears     int
	DepthCap        int
	CacheSize       int
	ReferenceYear   int
}

func (c *Config) toDatabase() *database.Config {
	return &database.Config{
		URL:              c.URL,
		AuthToken:        c.AuthToken,
		ProjectsDir:      c.ProjectsDir,
		MultiProjectMode: c.MultiProjectMode,
		MaxOpenConns:     c.MaxOpenConns,
		MaxIdleConns:     c.MaxIdleConns,
		ConnMaxIdleSec:   c.ConnMaxIdleSec,
		ConnMaxLifeSec:   c.ConnMaxLifeSec,
	}
}

func (c *Config) toPlanner() *planner.Config {
	pc := planner.NewConfig()
	if c.MinOverlapYears != nil {
		pc.MinOverlapYears = *c.MinOverlapYears
	}
	if c.MinFame != nil {
		pc.MinFame = *c.MinFame
	}
	if c.MaxGapYears > 0 {
		pc.MaxGapYears = c.MaxGapYears
	}
	if c.DepthCap > 0 {
		pc.DepthCap = c.DepthCap
	}
	if c.CacheSize > 0 {
		pc.CacheSize = c.CacheSize
	}
	if c.ReferenceYear != 0 {
		pc.ReferenceYear = c.ReferenceYear
	}
	return pc
}
