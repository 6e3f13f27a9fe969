package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/currency"
	"github.com/Veraticus/novatax/internal/dashboard"
	"github.com/Veraticus/novatax/internal/invoice"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/service"
	"github.com/Veraticus/novatax/internal/storage"
)

const maxBodyBytes = 1 << 20

type lineRequest struct {
	TaxRate     *float64       `json:"taxRate"`
	Description string         `json:"description"`
	Category    model.Category `json:"category"`
	Quantity    float64        `json:"quantity"`
	UnitPrice   float64        `json:"unitPrice"`
}

type createTransactionRequest struct {
	Date           model.Date            `json:"date"`
	Description    string                `json:"description"`
	Jurisdiction   string                `json:"jurisdiction"`
	Currency       string                `json:"currency"`
	Type           model.TransactionType `json:"type"`
	Source         model.Source          `json:"source"`
	Status         model.Status          `json:"status"`
	Classification model.Classification  `json:"classification"`
	Items          []lineRequest         `json:"items"`
}

type summaryResponse struct {
	service.CashFlowSummary
	Monthly []dashboard.MonthlyFlow `json:"monthly"`
}

type rateResponse struct {
	Jurisdiction string         `json:"jurisdiction"`
	Category     model.Category `json:"category"`
	Rate         float64        `json:"rate"`
	Known        bool           `json:"known"`
}

type predictRequest struct {
	Jurisdiction string         `json:"jurisdiction"`
	Description  string         `json:"description"`
	Category     model.Category `json:"category"`
}

type predictResponse struct {
	Rate      float64 `json:"rate"`
	Predicted bool    `json:"predicted"`
}

type convertResponse struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
	Result float64 `json:"result"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	txns := s.store.LoadAll(r.Context(), userID)
	if txns == nil {
		txns = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req createTransactionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, invoice.ErrEmptyLedger.Error())
		return
	}

	txn, err := invoice.BuildTransaction(s.lines(req), invoice.Meta{
		Date:           req.Date,
		Description:    req.Description,
		Type:           req.Type,
		Currency:       req.Currency,
		Source:         req.Source,
		Status:         req.Status,
		Classification: req.Classification,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.Append(r.Context(), userID, txn); err != nil {
		s.logger.Error("Failed to save transaction", "user_id", userID, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrInvalidTransaction) || errors.Is(err, storage.ErrEmptyString) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, txn)
}

// lines turns request items into ledger lines. Totals are recomputed and a
// missing rate is resolved from the jurisdiction table.
func (s *Server) lines(req createTransactionRequest) []model.LineItem {
	lines := make([]model.LineItem, len(req.Items))
	for i, item := range req.Items {
		category := model.ParseCategory(string(item.Category))
		quantity := item.Quantity
		if quantity < 0 {
			quantity = 0
		}

		rate := s.resolver.ResolveRate(req.Jurisdiction, category)
		if item.TaxRate != nil && *item.TaxRate >= 0 && *item.TaxRate <= 1 {
			rate = *item.TaxRate
		}

		lines[i] = model.LineItem{
			ID:          strconv.Itoa(i + 1),
			Description: item.Description,
			Category:    category,
			Quantity:    quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     rate,
			LineTotal:   invoice.Finite(quantity * item.UnitPrice),
		}
	}
	return lines
}

func (s *Server) handleWipeTransactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "deleting all transactions requires confirm=true")
		return
	}

	if err := s.store.WipeAll(r.Context(), userID); err != nil {
		s.logger.Error("Failed to wipe transactions", "user_id", userID, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, common.ErrRemoteUnavailable) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	q := r.URL.Query()

	display := currency.Normalize(q.Get("currency")).String()

	var dr service.DateRange
	if from := q.Get("from"); from != "" {
		d, err := model.ParseDate(from)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		dr.Start = d.Time
	}
	if to := q.Get("to"); to != "" {
		d, err := model.ParseDate(to)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		dr.End = d.Time
	}

	txns := s.store.LoadAll(r.Context(), userID)
	inRange := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if dr.Contains(txn.Date.Time) {
			inRange = append(inRange, txn)
		}
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		CashFlowSummary: dashboard.Summarize(txns, display, dr),
		Monthly:         dashboard.Monthly(inRange, display),
	})
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := s.store.LoadProfiles(r.Context())
	if profiles == nil {
		profiles = []model.UserProfile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var profile model.UserProfile
	if err := decodeBody(w, r, &profile); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	profile.ID = chi.URLParam(r, "profileID")

	if err := s.store.SaveProfile(r.Context(), profile); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrInvalidProfile) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleTaxRate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jurisdiction := q.Get("jurisdiction")
	category := model.ParseCategory(q.Get("category"))

	writeJSON(w, http.StatusOK, rateResponse{
		Jurisdiction: s.resolver.Profile(jurisdiction).Jurisdiction,
		Category:     category,
		Rate:         s.resolver.ResolveRate(jurisdiction, category),
		Known:        s.resolver.Known(jurisdiction),
	})
}

func (s *Server) handleJurisdictions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.resolver.Jurisdictions())
}

func (s *Server) handleTaxPredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	category := model.ParseCategory(string(req.Category))
	resp := predictResponse{Rate: s.resolver.ResolveRate(req.Jurisdiction, category)}

	if s.predictor != nil {
		rate, err := s.predictor.PredictRate(r.Context(), req.Jurisdiction, req.Description, category)
		if err != nil {
			s.logger.Warn("Rate prediction failed, using resolved rate", "jurisdiction", req.Jurisdiction, "error", err)
		} else {
			resp = predictResponse{Rate: rate, Predicted: true}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amount, err := strconv.ParseFloat(q.Get("amount"), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		writeError(w, http.StatusBadRequest, "amount must be a number")
		return
	}

	from := currency.Normalize(q.Get("from")).String()
	to := currency.Normalize(q.Get("to")).String()

	writeJSON(w, http.StatusOK, convertResponse{
		From:   from,
		To:     to,
		Amount: amount,
		Result: currency.Convert(amount, from, to),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}
