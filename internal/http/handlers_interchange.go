package http

import (
	"net/http"

	"fintrack/internal/core"
)

const maxUploadBytes = 10 << 20

type rowErrorView struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type importView struct {
	Imported []core.Transaction `json:"imported"`
	Skipped  []rowErrorView     `json:"skipped"`
}

// handleImport stores the rows of the multipart "file" field. Malformed rows
// are reported back, not fatal.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		BadRequestError("multipart field \"file\" is required").Write(w)
		return
	}
	defer file.Close()

	result, err := s.importer.Upload(r.Context(), header.Filename, file, username)
	if result != nil && len(result.Imported) > 0 {
		s.invalidateDashboards(username)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	view := importView{Imported: result.Imported, Skipped: make([]rowErrorView, 0, len(result.Skipped))}
	for _, rowErr := range result.Skipped {
		view.Skipped = append(view.Skipped, rowErrorView{Line: rowErr.Line, Error: rowErr.Err.Error()})
	}
	NewResponse().JSON(view).Write(w)
}

func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	body, err := s.exporter.ExportTransactionsCSV(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().CSV("transactions.csv", body).Write(w)
}

func (s *Server) handleExportDebts(w http.ResponseWriter, r *http.Request) {
	body, err := s.exporter.ExportDebtsCSV(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().CSV("debts.csv", body).Write(w)
}

func (s *Server) handleExportSheet(w http.ResponseWriter, r *http.Request) {
	if err := s.exporter.ExportTransactionsToSheet(r.Context(), r.PathValue("username")); err != nil {
		writeError(w, r, err)
		return
	}
	NoContent().Write(w)
}
