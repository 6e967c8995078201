package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vaultwallet/keyring/internal/config"
	"github.com/vaultwallet/keyring/internal/model"
	"github.com/vaultwallet/keyring/internal/vaultcrypto"
)

// UpdateConfig handles PUT /config. It accepts a JSON object of option-name
// to value and rejects any key outside the fixed allow-list
// (auto_lock_minutes, argon2_memory_kib, argon2_iterations,
// argon2_parallelism, default_chain) with ConfigOptionUnknown, applying
// nothing if any key is unrecognized. A successful auto_lock_minutes update
// takes effect on the Keyring's next deadline refresh; a successful argon2_*
// update takes effect on the next vault seal.
// @Summary      Update runtime-tunable configuration
// @Tags         config
// @Accept       json
// @Produce      json
// @Success      200  {object}  config.Config
// @Router       /config [put]
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var updates map[string]json.RawMessage
	if !decodeJSON(w, r, &updates) {
		return
	}

	cfg, err := config.ApplyRuntimeOverrides(updates)
	if err != nil {
		writeError(w, err)
		return
	}

	h.kr.SetAutoLockInterval(time.Duration(cfg.AutoLockMinutes) * time.Minute)
	vaultcrypto.DefaultKDFParams = model.KDFParams{
		MemoryKiB:   cfg.Argon2MemoryKiB,
		Iterations:  cfg.Argon2Iterations,
		Parallelism: cfg.Argon2Parallelism,
	}

	h.log.Info().Interface("updates", updates).Msg("config updated")
	writeJSON(w, http.StatusOK, cfg)
}
