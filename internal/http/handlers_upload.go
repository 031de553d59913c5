package http

import (
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"tally/internal/pipeline"
)

// handleUpload accepts a multipart CSV in the "file" field and runs the full
// upload cycle over it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No file part in the request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file part in the request")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected for uploading")
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "Invalid file type. Only CSV files are allowed.")
		return
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // rows may legitimately omit the target card column
	rows, err := reader.ReadAll()
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to parse uploaded CSV",
			"filename", header.Filename, "error", err)
		writeError(w, http.StatusBadRequest, "The uploaded CSV file is empty or improperly formatted.")
		return
	}

	result, err := s.processor.Process(r.Context(), rows)
	if err != nil {
		if errors.Is(err, pipeline.ErrMalformedInput) {
			writeError(w, http.StatusBadRequest, "The uploaded CSV file is empty or improperly formatted.")
			return
		}
		slog.ErrorContext(r.Context(), "Upload processing failed",
			"filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred while processing the file")
		return
	}

	slog.InfoContext(r.Context(), "Upload processed",
		"filename", header.Filename,
		"good_records", result.Good,
		"bad_records", result.Bad)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "File uploaded and processed successfully",
		"good_records": result.Good,
		"bad_records":  result.Bad,
	})
}

// handleReset clears the dataset and every derived table. Safe to repeat.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.processor.Reset(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Reset failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred while resetting the system")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "System reset successfully"})
}
