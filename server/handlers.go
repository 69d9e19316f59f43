package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"rewards/domain/entities"

	"github.com/go-chi/chi/v5"
)

// IdempotencyKeyHeader carries the client request id of a prize entry
const IdempotencyKeyHeader = "Idempotency-Key"

type openAccountRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type completeMissionRequest struct {
	ResultData json.RawMessage `json:"result_data"`
}

type applyReferralRequest struct {
	Code string `json:"code"`
}

type withdrawalRequest struct {
	ProductID   string          `json:"product_id"`
	ContactInfo json.RawMessage `json:"contact_info"`
}

type processWithdrawalRequest struct {
	Status     entities.WithdrawalStatus `json:"status"`
	AdminNotes string                    `json:"admin_notes"`
}

type adjustBalanceRequest struct {
	Currency entities.Currency `json:"currency"`
	Delta    int64             `json:"delta"`
	Note     string            `json:"note"`
}

func (s *Server) handleOpenAccount(w http.ResponseWriter, r *http.Request) {
	var req openAccountRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeDomainError(w, r, err)
		return
	}

	account, err := s.accounts.OpenAccount(r.Context(), req.UserID, req.Username)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.GetAccount(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleApplyReferral(w http.ResponseWriter, r *http.Request) {
	var req applyReferralRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeDomainError(w, r, err)
		return
	}

	account, err := s.accounts.ApplyReferral(r.Context(), chi.URLParam(r, "userID"), req.Code)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.wallet.GetBalance(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var currency *entities.Currency
	if raw := r.URL.Query().Get("currency"); raw != "" {
		parsed, err := entities.ParseCurrency(raw)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		currency = &parsed
	}

	entries, err := s.wallet.GetTransactionHistory(r.Context(), chi.URLParam(r, "userID"), currency, limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": nonNil(entries),
		"limit":        limit,
		"offset":       offset,
	})
}

func (s *Server) handleListMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := s.missions.ListMissions(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"missions": nonNil(missions)})
}

func (s *Server) handleCompleteMission(w http.ResponseWriter, r *http.Request) {
	var req completeMissionRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeDomainError(w, r, err)
		return
	}

	entry, err := s.missions.CompleteMission(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "missionID"), req.ResultData)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListPrizes(w http.ResponseWriter, r *http.Request) {
	prizes, err := s.prizes.ListPrizes(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"prizes": nonNil(prizes)})
}

// handleEnterPrize answers 201 for a new entry and 200 when the idempotency key was already used
func (s *Server) handleEnterPrize(w http.ResponseWriter, r *http.Request) {
	requestID := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))

	result, err := s.prizes.EnterPrize(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "prizeID"), requestID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

func (s *Server) handleGetPityStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.prizes.GetPityStatus(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "prizeID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleGetEntryHistory(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	entries, err := s.prizes.GetEntryHistory(r.Context(), chi.URLParam(r, "userID"), limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": nonNil(entries),
		"limit":   limit,
		"offset":  offset,
	})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.redemptions.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"products": nonNil(products)})
}

func (s *Server) handleListWithdrawals(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	withdrawals, err := s.redemptions.ListWithdrawals(r.Context(), chi.URLParam(r, "userID"), limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"withdrawals": nonNil(withdrawals),
		"limit":       limit,
		"offset":      offset,
	})
}

func (s *Server) handleRequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req withdrawalRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeDomainError(w, r, err)
		return
	}

	withdrawal, err := s.redemptions.RequestWithdrawal(r.Context(), chi.URLParam(r, "userID"), req.ProductID, req.ContactInfo)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, withdrawal)
}

func (s *Server) handleProcessWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req processWithdrawalRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeDomainError(w, r, err)
		return
	}

	withdrawal, err := s.redemptions.ProcessWithdrawal(r.Context(), chi.URLParam(r, "withdrawalID"), req.Status, req.AdminNotes)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawal)
}

func (s *Server) handleAdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req adjustBalanceRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeDomainError(w, r, err)
		return
	}

	entry, err := s.wallet.AdjustBalance(r.Context(), chi.URLParam(r, "userID"), req.Currency, req.Delta, req.Note)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// nonNil keeps empty lists encoded as [] instead of null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
