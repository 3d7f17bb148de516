package handlers

import (
	"net/http"

	"github.com/diewo77/kinz/httpx"
)

type outcomeBody struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	Count  int    `json:"count,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SyncStatus: GET /api/sync – whether the startup sync is still running.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]bool{
		"remote":       h.Sync != nil,
		"cloudLoading": h.Store.CloudLoading(),
	})
}

// RunSync: POST /api/sync – one migrate-or-adopt pass over every table.
func (h *Handler) RunSync(w http.ResponseWriter, r *http.Request) {
	if h.Sync == nil {
		httpx.JSONError(w, http.StatusConflict, "remote_disabled", nil)
		return
	}
	outcomes := h.Sync.Sync(r.Context())
	out := make([]outcomeBody, len(outcomes))
	for i, o := range outcomes {
		out[i] = outcomeBody{Table: o.Table, Action: string(o.Action), Count: o.Count}
		if o.Err != nil {
			out[i].Error = o.Err.Error()
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

// FactoryReset: POST /api/reset – wipes remote and local data. The body
// must be {"confirm": true}.
func (h *Handler) FactoryReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !req.Confirm {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"confirm": "required"})
		return
	}
	reset := h.Store.FactoryReset
	if h.Sync != nil {
		reset = h.Sync.FactoryReset
	}
	if err := reset(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Warn().Msg("factory reset via api")
	noContent(w)
}
