package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 16

type investRequest struct {
	// Amount is in POL, as a decimal string
	Amount string `json:"amount"`
}

type accountsRequest struct {
	Accounts []string `json:"accounts"`
}

type chainChangedRequest struct {
	ChainID uint64 `json:"chainId"`
}

type disconnectResponse struct {
	Disconnected bool `json:"disconnected"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Snapshot())
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Connect(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Snapshot())
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, disconnectResponse{Disconnected: s.svc.Disconnect(r.Context())})
}

func (s *Server) handleSetAccounts(w http.ResponseWriter, r *http.Request) {
	if s.wallet == nil {
		writeError(w, r, types.ErrProviderUnavailable)
		return
	}
	var req accountsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}
	if err := s.wallet.SetAccounts(r.Context(), req.Accounts); err != nil {
		writeBadRequest(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleChainChanged(w http.ResponseWriter, r *http.Request) {
	if s.wallet == nil {
		writeError(w, r, types.ErrProviderUnavailable)
		return
	}
	var req chainChangedRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}
	if req.ChainID == 0 {
		writeBadRequest(w, r, errors.New("chainId is required"))
		return
	}
	if err := s.wallet.SetChain(r.Context(), req.ChainID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleInvest(w http.ResponseWriter, r *http.Request) {
	var req investRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, r, err)
		return
	}
	receipt, err := s.svc.Invest(r.Context(), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.svc.Withdraw(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	event := log.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = log.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")

	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	log.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("bad request")
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "BAD_REQUEST"})
}
