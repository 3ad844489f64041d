package planner

import (
	"os"
	"strconv"
	"time"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/chain"
)

// Config holds the default thresholds applied when a query leaves them unset.
type Config struct {
	MinOverlapYears int
	MinFame         int
	MaxGapYears     int
	DepthCap        int
	CacheSize       int
	ReferenceYear   int
}

// NewConfig creates a new Config from environment variables
func NewConfig() *Config {
	return &Config{
		MinOverlapYears: envInt("CHAIN_MIN_OVERLAP_YEARS", chain.DefaultMinOverlapYears),
		MinFame:         envInt("CHAIN_MIN_FAME", chain.DefaultMinFame),
		MaxGapYears:     envInt("CHAIN_MAX_GAP_YEARS", chain.DefaultMaxGapYears),
		DepthCap:        envInt("CHAIN_DEPTH_CAP", chain.DefaultDepthCap),
		CacheSize:       envInt("CHAIN_CACHE_SIZE", chain.DefaultMemoSize),
		ReferenceYear:   envInt("CHAIN_REFERENCE_YEAR", time.Now().Year()),
	}
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
