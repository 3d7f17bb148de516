package handlers

import (
	"net/http"

	"github.com/diewo77/kinz/httpx"
	"github.com/diewo77/kinz/internal/models"
)

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Store.Settings())
}

// PatchSettings: PATCH /api/settings – merges the given fields.
func (h *Handler) PatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if !decode(w, r, &patch) {
		return
	}
	s, err := h.Store.UpdateSettings(r.Context(), patch)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_settings", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *Handler) GetContractOptions(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.Store.ContractOptions())
}

func (h *Handler) PutContractOptions(w http.ResponseWriter, r *http.Request) {
	var opts models.ContractOptions
	if !decode(w, r, &opts) {
		return
	}
	if err := h.Store.UpdateContractOptions(r.Context(), opts); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.Store.ContractOptions())
}

type themeBody struct {
	Dark bool `json:"dark"`
}

func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, themeBody{Dark: h.Store.DarkMode()})
}

func (h *Handler) PutTheme(w http.ResponseWriter, r *http.Request) {
	var t themeBody
	if !decode(w, r, &t) {
		return
	}
	if err := h.Store.SetDarkMode(r.Context(), t.Dark); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}
