// Copyright 2025 Mike-CZ
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Mike-CZ/ftm-gas-monetization/auth"
	"github.com/Mike-CZ/ftm-gas-monetization/epoch"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    err.Error(),
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Error:      http.StatusText(http.StatusBadRequest),
		Message:    message,
	})
}

// caller extracts the authenticated caller address from the request
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	addr := r.Header.Get(CallerHeader)
	if addr == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			StatusCode: http.StatusUnauthorized,
			Error:      http.StatusText(http.StatusUnauthorized),
			Message:    "missing caller address",
		})
		return "", false
	}
	return addr, true
}

func projectID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid project id")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadRequest(w, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

func (s *Server) handleAddProject(w http.ResponseWriter, r *http.Request) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	var req AddProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := s.registry.AddProject(
		callerAddr,
		req.Owner,
		req.RewardsRecipient,
		req.MetadataURI,
		req.Contracts,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AddProjectResponse{ProjectID: id})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	project, err := s.registry.ProjectByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProjectResponse{
		ProjectID:           project.ID,
		Owner:               project.Owner,
		RewardsRecipient:    project.RewardsRecipient,
		MetadataURI:         project.MetadataURI,
		Contracts:           project.Contracts,
		LastWithdrawalEpoch: project.LastWithdrawalEpoch,
		ActiveFromEpoch:     project.ActiveFromEpoch,
		ActiveToEpoch:       project.ActiveToEpoch,
	})
}

func (s *Server) handleSuspendProject(
	w http.ResponseWriter,
	r *http.Request,
) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	if err := s.registry.SuspendProject(callerAddr, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEnableProject(
	w http.ResponseWriter,
	r *http.Request,
) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	if err := s.registry.EnableProject(callerAddr, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddContract(w http.ResponseWriter, r *http.Request) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	var req ContractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := s.registry.AddProjectContract(callerAddr, id, req.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleRemoveContract(
	w http.ResponseWriter,
	r *http.Request,
) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	address := r.PathValue("address")
	err := s.registry.RemoveProjectContract(callerAddr, id, address)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateMetadata(
	w http.ResponseWriter,
	r *http.Request,
) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	var req UpdateMetadataRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := s.registry.UpdateMetadataURI(callerAddr, id, req.MetadataURI)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateOwner(w http.ResponseWriter, r *http.Request) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	var req UpdateOwnerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.registry.UpdateOwner(callerAddr, id, req.Owner); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateRecipient(
	w http.ResponseWriter,
	r *http.Request,
) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	var req UpdateRecipientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := s.registry.UpdateRewardsRecipient(
		callerAddr,
		id,
		req.RewardsRecipient,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContractOwner(
	w http.ResponseWriter,
	r *http.Request,
) {
	address := r.PathValue("address")
	id, err := s.registry.ProjectIDOfContract(address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ContractOwnerResponse{
		Address:   address,
		ProjectID: id,
	})
}

func (s *Server) handleFundingState(
	w http.ResponseWriter,
	_ *http.Request,
) {
	balance, err := s.treasury.Balance()
	if err != nil {
		writeError(w, err)
		return
	}
	lastFunded, err := s.funding.LastFundedEpoch()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FundingStateResponse{
		PoolBalance:     balance,
		LastFundedEpoch: lastFunded,
	})
}

func (s *Server) handleAddFunds(w http.ResponseWriter, r *http.Request) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	var req AddFundsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.funding.AddFunds(callerAddr, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWithdrawFunds(
	w http.ResponseWriter,
	r *http.Request,
) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	var req WithdrawFundsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := s.funding.WithdrawFunds(callerAddr, req.Recipient, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WithdrawFundsResponse{Amount: req.Amount})
}

func (s *Server) handleWithdrawAllFunds(
	w http.ResponseWriter,
	r *http.Request,
) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	var req WithdrawAllFundsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := s.funding.WithdrawAllFunds(callerAddr, req.Recipient)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WithdrawFundsResponse{Amount: amount})
}

func (s *Server) handleRequestWithdrawal(
	w http.ResponseWriter,
	r *http.Request,
) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	requestEpoch, err := s.engine.RequestWithdrawal(callerAddr, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, RequestWithdrawalResponse{
		RequestEpoch: requestEpoch,
	})
}

func (s *Server) handleConfirmWithdrawal(
	w http.ResponseWriter,
	r *http.Request,
) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	var req ConfirmWithdrawalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resolution, err := s.engine.SubmitConfirmation(
		callerAddr,
		id,
		req.Amount,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ConfirmWithdrawalResponse{
		Status:          string(resolution.Status),
		Amount:          resolution.Amount,
		RequestEpoch:    resolution.RequestEpoch,
		WithdrawalEpoch: resolution.WithdrawalEpoch,
		Confirmations:   resolution.Confirmations,
	})
}

func (s *Server) handlePendingWithdrawal(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	pending, err := s.engine.PendingRequest(id)
	if err != nil {
		writeError(w, err)
		return
	}
	buckets := make([]VoteBucketResponse, 0, len(pending.Buckets))
	for _, bucket := range pending.Buckets {
		buckets = append(buckets, VoteBucketResponse{
			Amount: bucket.Amount,
			Votes:  bucket.Votes,
		})
	}
	writeJSON(w, http.StatusOK, PendingWithdrawalResponse{
		RequestEpoch:  pending.RequestEpoch,
		Confirmations: pending.Confirmations,
		Providers:     pending.Providers,
		Buckets:       buckets,
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	settings, err := s.engine.Settings()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsResponse{
		Mode:               string(s.engine.Mode()),
		EpochsLimit:        settings.EpochsLimit,
		ConfirmationsLimit: settings.ConfirmationsLimit,
		AllowedDeviation:   settings.AllowedDeviation,
	})
}

func (s *Server) handleUpdateEpochsLimit(
	w http.ResponseWriter,
	r *http.Request,
) {
	s.handleUpdateLimit(w, r, s.engine.UpdateEpochsLimit)
}

func (s *Server) handleUpdateConfirmationsLimit(
	w http.ResponseWriter,
	r *http.Request,
) {
	s.handleUpdateLimit(w, r, s.engine.UpdateConfirmationsLimit)
}

func (s *Server) handleUpdateDeviation(
	w http.ResponseWriter,
	r *http.Request,
) {
	s.handleUpdateLimit(w, r, s.engine.UpdateDeviation)
}

func (s *Server) handleUpdateLimit(
	w http.ResponseWriter,
	r *http.Request,
	update func(string, uint64) error,
) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	var req UpdateLimitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := update(callerAddr, req.Limit); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	var req RoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := s.authReg.GrantRole(
		callerAddr,
		auth.Role(req.Role),
		req.Address,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	var req RoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := s.authReg.RevokeRole(
		callerAddr,
		auth.Role(req.Role),
		req.Address,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAuditRecords(w http.ResponseWriter, r *http.Request) {
	var fromSeq uint64
	var limit int
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeBadRequest(w, "invalid from sequence")
			return
		}
		fromSeq = parsed
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "invalid limit")
			return
		}
		limit = parsed
	}
	records, err := s.journal.Records(fromSeq, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetEpoch(w http.ResponseWriter, _ *http.Request) {
	current, err := s.epochs.Current()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EpochResponse{Epoch: current})
}

// handleSetEpoch advances a manually-driven epoch source. Admin only, and
// only available when the service runs with the manual source.
func (s *Server) handleSetEpoch(w http.ResponseWriter, r *http.Request) {
	callerAddr, ok := caller(w, r)
	if !ok {
		return
	}
	isAdmin, err := s.authReg.HasRole(auth.RoleAdmin, callerAddr)
	if err != nil {
		writeError(w, err)
		return
	}
	if !isAdmin {
		writeError(w, auth.ErrNotAdmin)
		return
	}
	manual, ok := s.epochs.(*epoch.Manual)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			StatusCode: http.StatusNotFound,
			Error:      http.StatusText(http.StatusNotFound),
			Message:    "epoch source is not manually driven",
		})
		return
	}
	var req SetEpochRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := manual.Set(req.Epoch); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
