package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/pocketledger/internal/aggregate"
	"github.com/dvloznov/pocketledger/internal/api/middleware"
	"github.com/dvloznov/pocketledger/internal/domain"
	"github.com/dvloznov/pocketledger/internal/ledger"
	"github.com/dvloznov/pocketledger/internal/pipeline"
)

// AggregatesHandler serves the read side: spending, income, savings,
// assets.
type AggregatesHandler struct {
	agg *aggregate.Aggregator
	log zerolog.Logger
}

// NewAggregatesHandler creates a new aggregates handler.
func NewAggregatesHandler(agg *aggregate.Aggregator, log zerolog.Logger) *AggregatesHandler {
	return &AggregatesHandler{agg: agg, log: log}
}

// GetSummary handles GET /api/summary
// Returns the latest month's spending, income, and net savings plus
// total assets, the numbers the dashboard headline shows.
func (h *AggregatesHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	cumulative, months, err := windowParams(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	spending, err := h.agg.Spending(cumulative, months)
	if err != nil {
		h.writeAggregateError(w, err, "Failed to aggregate spending")
		return
	}

	income, err := h.agg.Income(cumulative, months)
	if err != nil && !errors.Is(err, domain.ErrNoPaycheckData) {
		h.writeAggregateError(w, err, "Failed to aggregate income")
		return
	}

	savings, err := h.agg.NetSavings(cumulative, months)
	if err != nil {
		h.writeAggregateError(w, err, "Failed to aggregate savings")
		return
	}

	assets, err := h.agg.TotalAssets()
	if err != nil && !errors.Is(err, domain.ErrDatasetMissing) {
		h.writeAggregateError(w, err, "Failed to compute total assets")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"spending": map[string]decimal.Decimal{
			domain.CategoryRent:       spending.Rent,
			domain.CategoryCreditCard: spending.CreditCard,
			domain.CategoryMisc:       spending.Misc,
		},
		"income":       income,
		"net_savings":  savings,
		"total_assets": assets,
	})
}

// GetSpending handles GET /api/spending
// With start/end/year/month it returns a per-category breakdown of the
// selected range; otherwise the three-category lookback aggregate.
func (h *AggregatesHandler) GetSpending(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("start") != "" || query.Get("end") != "" ||
		query.Get("year") != "" || query.Get("month") != "" {
		h.getSpendingBreakdown(w, r)
		return
	}

	cumulative, months, err := windowParams(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	spending, err := h.agg.Spending(cumulative, months)
	if err != nil {
		h.writeAggregateError(w, err, "Failed to aggregate spending")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cumulative": cumulative,
		"months":     months,
		"spending": map[string]decimal.Decimal{
			domain.CategoryRent:       spending.Rent,
			domain.CategoryCreditCard: spending.CreditCard,
			domain.CategoryMisc:       spending.Misc,
		},
	})
}

func (h *AggregatesHandler) getSpendingBreakdown(w http.ResponseWriter, r *http.Request) {
	q, err := rangeParams(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	src := aggregate.Source(r.URL.Query().Get("source"))
	if src == "" {
		src = aggregate.SourceBank
	}

	breakdown, label, err := h.agg.SpendingBreakdown(src, q)
	if err != nil {
		if errors.Is(err, domain.ErrDatasetMissing) {
			middleware.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to compute spending breakdown")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute spending breakdown")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"source":    src,
		"range":     label,
		"breakdown": breakdown,
	})
}

// GetIncome handles GET /api/income
func (h *AggregatesHandler) GetIncome(w http.ResponseWriter, r *http.Request) {
	cumulative, months, err := windowParams(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	income, err := h.agg.Income(cumulative, months)
	if err != nil {
		if errors.Is(err, domain.ErrNoPaycheckData) {
			middleware.WriteError(w, http.StatusNotFound, "No paycheck data in the selected window")
			return
		}
		h.writeAggregateError(w, err, "Failed to aggregate income")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cumulative": cumulative,
		"months":     months,
		"income":     income,
	})
}

// GetSavings handles GET /api/savings
func (h *AggregatesHandler) GetSavings(w http.ResponseWriter, r *http.Request) {
	cumulative, months, err := windowParams(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	savings, err := h.agg.NetSavings(cumulative, months)
	if err != nil {
		h.writeAggregateError(w, err, "Failed to aggregate savings")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cumulative":  cumulative,
		"months":      months,
		"net_savings": savings,
	})
}

// GetAssets handles GET /api/assets
func (h *AggregatesHandler) GetAssets(w http.ResponseWriter, r *http.Request) {
	total, err := h.agg.TotalAssets()
	if err != nil {
		if errors.Is(err, domain.ErrDatasetMissing) {
			middleware.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		h.writeAggregateError(w, err, "Failed to compute total assets")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"total_assets": total,
	})
}

func (h *AggregatesHandler) writeAggregateError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, domain.ErrDatasetMissing) {
		middleware.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	h.log.Error().Err(err).Msg(msg)
	middleware.WriteError(w, http.StatusInternalServerError, msg)
}

// InvestmentsHandler records and lists investment entries.
type InvestmentsHandler struct {
	store *ledger.Store
	log   zerolog.Logger
}

// NewInvestmentsHandler creates a new investments handler.
func NewInvestmentsHandler(store *ledger.Store, log zerolog.Logger) *InvestmentsHandler {
	return &InvestmentsHandler{store: store, log: log}
}

// ListInvestments handles GET /api/investments
func (h *InvestmentsHandler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.ReadTransactions(ledger.DatasetInvestments)
	if err != nil {
		if errors.Is(err, domain.ErrDatasetMissing) {
			recs = nil
		} else {
			h.log.Error().Err(err).Msg("Failed to read investments")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to read investments")
			return
		}
	}

	entries := make([]map[string]interface{}, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, map[string]interface{}{
			"date":       rec.Date.Format(domain.DateFormat),
			"instrument": rec.Category,
			"amount":     rec.Amount,
		})
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"investments": entries,
		"count":       len(entries),
	})
}

// RecordInvestment handles POST /api/investments
func (h *InvestmentsHandler) RecordInvestment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date       string          `json:"date"`
		Instrument string          `json:"instrument"`
		Amount     decimal.Decimal `json:"amount"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Date == "" || req.Instrument == "" {
		middleware.WriteError(w, http.StatusBadRequest, "date and instrument are required")
		return
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid date format, want YYYY-MM-DD")
		return
	}

	rec := domain.Record{Date: date, Amount: req.Amount, Category: req.Instrument}
	if err := h.store.AppendTransactions(ledger.DatasetInvestments, []domain.Record{rec}); err != nil {
		h.log.Error().Err(err).Msg("Failed to record investment")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to record investment")
		return
	}

	h.log.Info().
		Str("instrument", req.Instrument).
		Str("date", req.Date).
		Msg("Investment entry recorded")

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"date":       req.Date,
		"instrument": req.Instrument,
		"amount":     req.Amount,
	})
}

// IngestHandler triggers a synchronous sweep of the inbox directory.
type IngestHandler struct {
	deps     *pipeline.Deps
	inboxDir string
	log      zerolog.Logger
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(deps *pipeline.Deps, inboxDir string, log zerolog.Logger) *IngestHandler {
	return &IngestHandler{deps: deps, inboxDir: inboxDir, log: log}
}

// IngestInbox handles POST /api/ingest
func (h *IngestHandler) IngestInbox(w http.ResponseWriter, r *http.Request) {
	res, err := pipeline.IngestInbox(r.Context(), h.deps, h.inboxDir)
	if err != nil {
		h.log.Error().Err(err).Msg("Inbox ingestion failed")
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"bank_statements": res.BankStatements,
		"credit_exports":  res.CreditExports,
		"skipped":         res.Skipped,
	})
}

// windowParams parses the cumulative and months query parameters shared
// by the lookback endpoints.
func windowParams(r *http.Request) (cumulative bool, months int, err error) {
	query := r.URL.Query()

	if v := query.Get("cumulative"); v != "" {
		cumulative, err = strconv.ParseBool(v)
		if err != nil {
			return false, 0, errors.New("invalid cumulative, want true or false")
		}
	}

	if v := query.Get("months"); v != "" {
		months, err = strconv.Atoi(v)
		if err != nil || months < 0 {
			return false, 0, errors.New("invalid months, want a non-negative integer")
		}
	}

	return cumulative, months, nil
}

// rangeParams parses the start/end/year/month parameters of the
// breakdown endpoint.
func rangeParams(r *http.Request) (aggregate.RangeQuery, error) {
	query := r.URL.Query()
	var q aggregate.RangeQuery

	if v := query.Get("start"); v != "" {
		t, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return q, errors.New("invalid start date, want YYYY-MM-DD")
		}
		q.Start = &t
	}
	if v := query.Get("end"); v != "" {
		t, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return q, errors.New("invalid end date, want YYYY-MM-DD")
		}
		q.End = &t
	}
	if v := query.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return q, errors.New("invalid year")
		}
		q.Year = year
	}
	if v := query.Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return q, errors.New("invalid month, want 1-12")
		}
		q.Month = month
	}

	return q, nil
}
