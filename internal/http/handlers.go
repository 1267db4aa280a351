package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"primanota/internal/core"
	"primanota/internal/ledger"
	applog "primanota/internal/log"
	"primanota/internal/report"
)

// transactionView is the wire form of one ledger row.
type transactionView struct {
	Date          string `json:"date"`
	AmountCents   int64  `json:"amount_cents"`
	Amount        string `json:"amount"`
	Causale       string `json:"causale"`
	CostCenter    string `json:"cost_center"`
	Description   string `json:"description,omitempty"`
	PaymentMethod string `json:"cassa,omitempty"`
	Notes         string `json:"note,omitempty"`
	Province      string `json:"province,omitempty"`
}

func viewOf(t core.Transaction) transactionView {
	return transactionView{
		Date:          t.Date.Format("2006-01-02"),
		AmountCents:   t.Amount.Cents,
		Amount:        core.FormatEuro(t.Amount),
		Causale:       t.Reason,
		CostCenter:    t.Category,
		Description:   t.Description,
		PaymentMethod: t.PaymentMethod,
		Notes:         t.Notes,
		Province:      t.Province,
	}
}

func viewsOf(txs []core.Transaction) []transactionView {
	out := make([]transactionView, len(txs))
	for i, t := range txs {
		out[i] = viewOf(t)
	}
	return out
}

type moneyView struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func moneyOf(m core.Money) moneyView {
	return moneyView{Cents: m.Cents, Formatted: core.FormatEuro(m)}
}

type statsView struct {
	Loaded             int `json:"loaded"`
	InvalidDates       int `json:"invalid_dates"`
	UnparseableAmounts int `json:"unparseable_amounts"`
	OutOfScope         int `json:"out_of_scope"`
}

func statsOf(s ledger.Stats) statsView {
	return statsView{
		Loaded:             s.Loaded,
		InvalidDates:       s.InvalidDates,
		UnparseableAmounts: s.UnparseableAmounts,
		OutOfScope:         s.OutOfScope,
	}
}

// loadLedger resolves the caller and loads their scoped ledger, writing
// the error response itself on failure.
func (s *Server) loadLedger(w http.ResponseWriter, r *http.Request) ([]core.Transaction, ledger.Stats, core.UserContext, bool) {
	user, err := userFromRequest(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return nil, ledger.Stats{}, core.UserContext{}, false
	}

	txs, stats, err := s.ledger.Load(r.Context(), user)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Ledger load failed", "error", err)
		if errors.Is(err, ledger.ErrSourceUnavailable) {
			ServiceUnavailableError("ledger source unavailable").Write(w)
		} else {
			InternalServerError("ledger load failed").Write(w)
		}
		return nil, ledger.Stats{}, core.UserContext{}, false
	}
	return txs, stats, user, true
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	month, err := monthFromQuery(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	txs, stats, _, ok := s.loadLedger(w, r)
	if !ok {
		return
	}

	if month != "" {
		filtered := txs[:0:0]
		for _, t := range txs {
			if t.YearMonth() == month {
				filtered = append(filtered, t)
			}
		}
		txs = filtered
	}

	NewResponse().JSON(struct {
		Transactions []transactionView `json:"transactions"`
		Stats        statsView         `json:"stats"`
	}{viewsOf(txs), statsOf(stats)}).Write(w)
}

func (s *Server) handleCreateMovement(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	var req movementRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	t, err := req.toTransaction()
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	if err := s.ledger.Append(r.Context(), user, t); err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotAllowed):
			ForbiddenError(err.Error()).Write(w)
		case errors.Is(err, ledger.ErrWriteFailed):
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Movement append failed",
				"error", err,
				"date", req.Date)
			BadGatewayError("movement write failed").Write(w)
		case errors.Is(err, core.ErrInvalidAmount),
			errors.Is(err, core.ErrInvalidDate),
			errors.Is(err, core.ErrEmptyCategory),
			errors.Is(err, core.ErrEmptyReason):
			UnprocessableEntityError(err.Error()).Write(w)
		default:
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Movement append failed",
				"error", err,
				"date", req.Date)
			InternalServerError("movement append failed").Write(w)
		}
		return
	}

	NewResponse().Status(http.StatusCreated).JSON(struct {
		Movement transactionView `json:"movement"`
	}{viewOf(t)}).Write(w)
}

func (s *Server) handleReferences(w http.ResponseWriter, r *http.Request) {
	refs, err := s.refs.References(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "References read failed", "error", err)
		ServiceUnavailableError("references unavailable").Write(w)
		return
	}

	NewResponse().JSON(struct {
		Causali     []string `json:"causali"`
		CostCenters []string `json:"cost_centers"`
		Casse       []string `json:"casse"`
	}{refs.Causali, refs.CostCenters, refs.Casse}).Write(w)
}

func (s *Server) handlePeriodReport(w http.ResponseWriter, r *http.Request) {
	month, err := monthFromQuery(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if month == "" {
		BadRequestError("month parameter is required").Write(w)
		return
	}
	category := r.URL.Query().Get("category")

	txs, _, _, ok := s.loadLedger(w, r)
	if !ok {
		return
	}

	totals := report.PeriodTotals(txs, month, category)
	NewResponse().JSON(struct {
		Month    string    `json:"month"`
		Category string    `json:"category,omitempty"`
		Inflow   moneyView `json:"inflow"`
		Outflow  moneyView `json:"outflow"`
		Net      moneyView `json:"net"`
	}{month, category, moneyOf(totals.Inflow), moneyOf(totals.Outflow), moneyOf(totals.Net)}).Write(w)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	txs, _, _, ok := s.loadLedger(w, r)
	if !ok {
		return
	}

	series := report.MonthlySeries(txs)

	type monthView struct {
		Month   string    `json:"month"`
		Inflow  moneyView `json:"inflow"`
		Outflow moneyView `json:"outflow"`
	}
	type categoryView struct {
		Category string    `json:"category"`
		Net      moneyView `json:"net"`
	}

	months := make([]monthView, len(series.ByMonth))
	for i, m := range series.ByMonth {
		months[i] = monthView{Month: m.Month, Inflow: moneyOf(m.Inflow), Outflow: moneyOf(m.Outflow)}
	}
	categories := make([]categoryView, len(series.ByCategory))
	for i, c := range series.ByCategory {
		categories[i] = categoryView{Category: c.Category, Net: moneyOf(c.Net)}
	}

	NewResponse().JSON(struct {
		ByMonth    []monthView    `json:"by_month"`
		ByCategory []categoryView `json:"by_category"`
	}{months, categories}).Write(w)
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	txs, _, _, ok := s.loadLedger(w, r)
	if !ok {
		return
	}

	st := report.StatementSections(txs)

	type lineView struct {
		Causale string    `json:"causale"`
		Amount  moneyView `json:"amount"`
	}
	lines := func(sums []report.ReasonSum) []lineView {
		out := make([]lineView, len(sums))
		for i, l := range sums {
			out[i] = lineView{Causale: l.Reason, Amount: moneyOf(l.Amount)}
		}
		return out
	}

	NewResponse().JSON(struct {
		SectionA []lineView `json:"section_a"`
		SectionB []lineView `json:"section_b"`
		TotalA   moneyView  `json:"total_a"`
		TotalB   moneyView  `json:"total_b"`
		Balance  moneyView  `json:"balance"`
	}{lines(st.SectionA), lines(st.SectionB), moneyOf(st.TotalA), moneyOf(st.TotalB), moneyOf(st.Balance)}).Write(w)
}

func (s *Server) handleDonations(w http.ResponseWriter, r *http.Request) {
	txs, _, _, ok := s.loadLedger(w, r)
	if !ok {
		return
	}

	rep := report.Donations(txs)
	var last *transactionView
	if rep.Last != nil {
		v := viewOf(*rep.Last)
		last = &v
	}

	NewResponse().JSON(struct {
		Entries []transactionView `json:"entries"`
		Total   moneyView         `json:"total"`
		Last    *transactionView  `json:"last,omitempty"`
	}{viewsOf(rep.Entries), moneyOf(rep.Total), last}).Write(w)
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		ServiceUnavailableError("balance storage not configured").Write(w)
		return
	}
	year, err := yearFromQuery(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if year == 0 {
		BadRequestError("year parameter is required").Write(w)
		return
	}

	txs, _, _, ok := s.loadLedger(w, r)
	if !ok {
		return
	}

	balances, err := s.storage.GetBalances(r.Context(), year)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Balances read failed", "error", err, "year", year)
		InternalServerError("balances read failed").Write(w)
		return
	}

	// Reconciliation compares the year's movements, not the whole ledger.
	prefix := strconv.Itoa(year) + "-"
	yearTxs := txs[:0:0]
	for _, t := range txs {
		if strings.HasPrefix(t.YearMonth(), prefix) {
			yearTxs = append(yearTxs, t)
		}
	}

	rec := report.Reconcile(report.NetBalance(yearTxs), balances)
	NewResponse().JSON(struct {
		Year    int       `json:"year"`
		Net     moneyView `json:"net"`
		Total   moneyView `json:"recorded_total"`
		Delta   moneyView `json:"delta"`
		Status  string    `json:"status"`
		Entries int       `json:"movements"`
	}{year, moneyOf(report.NetBalance(yearTxs)), moneyOf(rec.Total), moneyOf(rec.Delta), string(rec.Status), len(yearTxs)}).Write(w)
}

func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		ServiceUnavailableError("balance storage not configured").Write(w)
		return
	}
	year, err := yearFromPath(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	balances, err := s.storage.GetBalances(r.Context(), year)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Balances read failed", "error", err, "year", year)
		InternalServerError("balances read failed").Write(w)
		return
	}

	type balanceView struct {
		Account string    `json:"account"`
		Balance moneyView `json:"balance"`
	}
	out := make([]balanceView, len(balances))
	for i, b := range balances {
		out[i] = balanceView{Account: b.Account, Balance: moneyOf(b.Balance)}
	}

	NewResponse().JSON(struct {
		Year     int           `json:"year"`
		Balances []balanceView `json:"balances"`
	}{year, out}).Write(w)
}

func (s *Server) handlePutBalances(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		ServiceUnavailableError("balance storage not configured").Write(w)
		return
	}
	user, err := userFromRequest(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if !user.CanAppend() {
		ForbiddenError("role not allowed to record balances").Write(w)
		return
	}

	year, err := yearFromPath(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	var req balancesRequest
	if err := decodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	balances, err := req.toBalances()
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	if err := s.storage.UpsertBalances(r.Context(), year, balances); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Balances store failed", "error", err, "year", year)
		InternalServerError("balances store failed").Write(w)
		return
	}

	NewResponse().JSON(struct {
		Year     int `json:"year"`
		Accounts int `json:"accounts"`
	}{year, len(balances)}).Write(w)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.ledger.Refresh()
	NewResponse().Status(http.StatusAccepted).JSON(struct {
		Refreshed bool `json:"refreshed"`
	}{true}).Write(w)
}
