package handlers

import (
	"net/http"

	"github.com/wonny/bullscan/internal/strategyconfig"
)

// StrategyHandler exposes the active strategy configuration
type StrategyHandler struct {
	config *strategyconfig.Config
	hash   string
}

// NewStrategyHandler snapshots cfg and its hash
func NewStrategyHandler(cfg *strategyconfig.Config) (*StrategyHandler, error) {
	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return nil, err
	}
	return &StrategyHandler{config: cfg, hash: hash}, nil
}

// Get returns the config, its hash and any soft warnings
// GET /api/strategy
func (h *StrategyHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"config_hash": h.hash,
		"min_bars":    h.config.MinBars(),
		"warnings":    strategyconfig.Warn(h.config),
		"config":      h.config,
	})
}
