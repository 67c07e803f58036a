package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// userView is a user as returned to clients; the password never leaves the server.
type userView struct {
	Username string `json:"username"`
	Currency string `json:"currency"`
}

func viewOf(u core.User) userView {
	return userView{Username: u.Username, Currency: u.Currency}
}

// handleTags lists the predefined tags; clients may still send free-form ones.
func handleTags(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string][]string{"tags": core.DefaultTags()}).Write(w)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u := core.User{
		Username: sanitizeInput(req.Username),
		Password: req.Password,
		Currency: sanitizeInput(req.Currency),
	}
	if err := s.ledger.Users.Register(r.Context(), u); err != nil {
		writeError(w, r, err)
		return
	}
	registered, err := s.ledger.Users.GetUser(r.Context(), u.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "User registered", log.FieldUsername, u.Username)
	Created(viewOf(registered)).Write(w)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.ledger.Users.GetUser(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(viewOf(u)).Write(w)
}

func (s *Server) handleUpdateCurrency(w http.ResponseWriter, r *http.Request) {
	var req currencyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.Users.UpdateCurrency(r.Context(), r.PathValue("username"), sanitizeInput(req.Currency)); err != nil {
		writeError(w, r, err)
		return
	}
	NoContent().Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if !s.ledger.Users.ValidateUser(r.Context(), r.PathValue("username"), req.Password) {
		ErrorResponse(http.StatusUnauthorized, "invalid username or password").Write(w)
		return
	}
	NoContent().Write(w)
}

type balanceView struct {
	Balance       decimal.Decimal `json:"balance"`
	TotalDebt     decimal.Decimal `json:"totalDebt"`
	OverdueCount  int             `json:"overdueCount"`
	OverdueAmount decimal.Decimal `json:"overdueAmount"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	ctx, username := r.Context(), r.PathValue("username")
	NewResponse().JSON(balanceView{
		Balance:       s.ledger.Transactions.Balance(ctx, username),
		TotalDebt:     s.ledger.Debts.GetTotalDebt(ctx, username),
		OverdueCount:  s.ledger.Debts.GetOverdueCount(ctx, username),
		OverdueAmount: s.ledger.Debts.GetOverdueAmount(ctx, username),
	}).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q, err := parseSearchQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(s.ledger.Transactions.SearchFilterAndSort(r.Context(), r.PathValue("username"), q)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := req.toTransaction()
	if err != nil {
		writeError(w, r, err)
		return
	}
	stored, err := s.ledger.Transactions.AddTransaction(r.Context(), username, t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboards(username)
	Created(stored).Write(w)
}

// handleUpdateTransaction matches by the title in the path, or by id when the
// body carries one; only an id match may rename.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Title == "" {
		req.Title = r.PathValue("title")
	}
	t, err := req.toTransaction()
	if err != nil {
		writeError(w, r, err)
		return
	}

	if t.ID != "" {
		err = s.ledger.Transactions.UpdateTransactionByID(r.Context(), username, t)
	} else {
		t.Title = r.PathValue("title")
		err = s.ledger.Transactions.UpdateTransaction(r.Context(), username, t)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboards(username)
	NoContent().Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	var err error
	if id := r.URL.Query().Get("id"); id != "" {
		err = s.ledger.Transactions.DeleteTransactionByID(r.Context(), username, id)
	} else {
		err = s.ledger.Transactions.DeleteTransaction(r.Context(), username, r.PathValue("title"))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboards(username)
	NoContent().Write(w)
}
