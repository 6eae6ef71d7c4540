package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/quantfarer/vigil/internal/api/response"
	"github.com/quantfarer/vigil/internal/core"
)

type buyRequest struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Scalp    bool    `json:"is_scalp_trade"`
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.deps.Store.Holdings(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"count":    len(holdings),
		"holdings": holdings,
	})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}
	if req.Symbol == "" || req.Quantity <= 0 || req.Price <= 0 {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid,
				errors.New("symbol, positive quantity and price are required")))
		return
	}

	holding, err := s.deps.Store.Buy(r.Context(), req.Symbol, req.Name, req.Quantity, req.Price, req.Scalp)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	response.JSON(w, http.StatusCreated, holding)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	if err := s.deps.Store.Close(r.Context(), symbol); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrHoldingNotFound) {
			status = http.StatusNotFound
		}
		response.Error(w, status, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"closed": symbol})
}

func (s *Server) handleSellSignals(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			hours = n
		}
	}

	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	signals, err := s.deps.Store.SellSignals(r.Context(), since)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"since":   since,
		"count":   len(signals),
		"signals": signals,
	})
}
