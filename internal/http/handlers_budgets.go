package http

import "net/http"

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.ledger.Budgets.GetBudgets(r.Context(), r.PathValue("username"))).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := req.toBudget()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.Budgets.AddBudget(r.Context(), r.PathValue("username"), b); err != nil {
		writeError(w, r, err)
		return
	}
	Created(b).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Category = r.PathValue("category")
	b, err := req.toBudget()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.Budgets.UpdateBudget(r.Context(), r.PathValue("username"), b); err != nil {
		writeError(w, r, err)
		return
	}
	NoContent().Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Budgets.DeleteBudget(r.Context(), r.PathValue("username"), r.PathValue("category")); err != nil {
		writeError(w, r, err)
		return
	}
	NoContent().Write(w)
}
