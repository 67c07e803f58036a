// Package http serves the ledger over a JSON API.
//
// This file decodes request bodies and query strings into domain values.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

// flexString accepts a JSON string or number, so amounts may be sent either way.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// decodeJSON reads a single JSON object from r into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errMalformedBody)
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// parseAmount treats an absent amount as zero.
func parseAmount(s flexString) (decimal.Decimal, error) {
	if strings.TrimSpace(string(s)) == "" {
		return decimal.Zero, nil
	}
	return core.ParseAmount(string(s))
}

type transactionRequest struct {
	ID     string     `json:"id"`
	Title  string     `json:"title"`
	Amount flexString `json:"amount"`
	Date   string     `json:"date"`
	Kind   string     `json:"type"`
	Tags   []string   `json:"tags"`
	Notes  string     `json:"notes"`
}

func (req transactionRequest) toTransaction() (core.Transaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if tag = sanitizeInput(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return core.Transaction{
		ID:     strings.TrimSpace(req.ID),
		Title:  sanitizeInput(req.Title),
		Amount: amount,
		Date:   date,
		Kind:   kind,
		Tags:   tags,
		Notes:  sanitizeInput(req.Notes),
	}, nil
}

type debtRequest struct {
	ID         string     `json:"id"`
	Creditor   string     `json:"creditor"`
	AmountOwed flexString `json:"amountOwed"`
	DueDate    string     `json:"dueDate"`
	IsCleared  bool       `json:"isCleared"`
}

func (req debtRequest) toDebt() (core.Debt, error) {
	amount, err := parseAmount(req.AmountOwed)
	if err != nil {
		return core.Debt{}, err
	}
	due, err := core.ParseDate(req.DueDate)
	if err != nil {
		return core.Debt{}, err
	}
	if due == nil {
		return core.Debt{}, fmt.Errorf("%w: due date is required", core.ErrInvalidDate)
	}
	return core.Debt{
		ID:         strings.TrimSpace(req.ID),
		Creditor:   sanitizeInput(req.Creditor),
		AmountOwed: amount,
		DueDate:    *due,
		IsCleared:  req.IsCleared,
	}, nil
}

type budgetRequest struct {
	Category string     `json:"category"`
	Limit    flexString `json:"limit"`
	Spent    flexString `json:"spent"`
}

func (req budgetRequest) toBudget() (core.Budget, error) {
	limit, err := parseAmount(req.Limit)
	if err != nil {
		return core.Budget{}, err
	}
	spent, err := parseAmount(req.Spent)
	if err != nil {
		return core.Budget{}, err
	}
	b := core.NewBudget(sanitizeInput(req.Category), limit)
	b.Spent = spent
	return b, nil
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Currency string `json:"currency"`
}

type currencyRequest struct {
	Currency string `json:"currency"`
}

type loginRequest struct {
	Password string `json:"password"`
}

// parseWindow reads start and end as calendar dates. Both must be present for
// the window to filter.
func parseWindow(query url.Values) (core.Window, error) {
	start, err := core.ParseDate(query.Get("start"))
	if err != nil {
		return core.Window{}, err
	}
	end, err := core.ParseDate(query.Get("end"))
	if err != nil {
		return core.Window{}, err
	}
	var w core.Window
	if start != nil {
		w.Start = *start
	}
	if end != nil {
		w.End = *end
	}
	return w, nil
}

// parseSearchQuery maps q, kind, tag, start, end, sort and order onto a
// ledger query. Results are newest first unless order=asc.
func parseSearchQuery(query url.Values) (ledger.Query, error) {
	window, err := parseWindow(query)
	if err != nil {
		return ledger.Query{}, err
	}
	q := ledger.Query{
		Text:      strings.TrimSpace(query.Get("q")),
		Window:    window,
		SortBy:    ledger.ParseSortField(query.Get("sort")),
		Ascending: strings.EqualFold(query.Get("order"), "asc"),
	}
	if kind := query.Get("kind"); kind != "" {
		if q.Kind, err = core.ParseKind(kind); err != nil {
			return ledger.Query{}, err
		}
	}
	for _, tag := range query["tag"] {
		if tag = strings.TrimSpace(tag); tag != "" {
			q.Tags = append(q.Tags, tag)
		}
	}
	return q, nil
}
