package http

import (
	"net/http"
	"strings"
)

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	ctx, username := r.Context(), r.PathValue("username")
	if creditor := strings.TrimSpace(r.URL.Query().Get("creditor")); creditor != "" {
		NewResponse().JSON(s.ledger.Debts.GetDebtsByCreditor(ctx, username, creditor)).Write(w)
		return
	}
	NewResponse().JSON(s.ledger.Debts.GetDebts(ctx, username)).Write(w)
}

func (s *Server) handleUpcomingDebts(w http.ResponseWriter, r *http.Request) {
	days := intParam(r, "days", s.opts.UpcomingDaysDefault)
	NewResponse().JSON(s.ledger.Debts.GetUpcomingDebts(r.Context(), r.PathValue("username"), days)).Write(w)
}

func (s *Server) handleDebtSummary(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.ledger.Debts.GetDebtSummary(r.Context(), r.PathValue("username"))).Write(w)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	var req debtRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := req.toDebt()
	if err != nil {
		writeError(w, r, err)
		return
	}
	stored, err := s.ledger.Debts.AddDebt(r.Context(), username, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboards(username)
	Created(stored).Write(w)
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	var req debtRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Creditor == "" {
		req.Creditor = r.PathValue("creditor")
	}
	d, err := req.toDebt()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.Debts.UpdateDebt(r.Context(), username, r.PathValue("creditor"), d); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboards(username)
	NoContent().Write(w)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	var err error
	if id := r.URL.Query().Get("id"); id != "" {
		err = s.ledger.Debts.DeleteDebtByID(r.Context(), username, id)
	} else {
		err = s.ledger.Debts.DeleteDebt(r.Context(), username, r.PathValue("creditor"))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateDashboards(username)
	NoContent().Write(w)
}

// handleClearDebt pays the first outstanding debt owed to the creditor.
func (s *Server) handleClearDebt(w http.ResponseWriter, r *http.Request) {
	username, creditor := r.PathValue("username"), r.PathValue("creditor")
	cleared, err := s.ledger.Debts.ClearDebt(r.Context(), username, creditor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cleared == nil {
		NotFoundError("no outstanding debt for creditor " + creditor).Write(w)
		return
	}
	s.invalidateDashboards(username)
	NewResponse().JSON(cleared).Write(w)
}
