package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/branchtree/internal/core"
	"github.com/JonMunkholm/branchtree/internal/tabular"
)

// convertBody is the JSON request accepted by POST /api/convert.
type convertBody struct {
	CSVContent string `json:"csvContent"`
	Strategy   string `json:"strategy,omitempty"`
}

// handleConvert converts CSV sent either as {"csvContent": "..."} or, with
// Content-Type text/csv, as the raw request body.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Convert.MaxFileSize)
	strategy := r.URL.Query().Get("strategy")

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/csv" {
		result, err := s.service.Convert(r.Context(), core.ConvertRequest{
			FileName: "body.csv",
			Format:   tabular.FormatCSV,
			Body:     r.Body,
			Strategy: strategy,
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		s.writeDocument(w, r, result, "converted")
		return
	}

	var body convertBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, err)
			return
		}
		respondError(w, r, fmt.Errorf("%w: %w", core.ErrInvalidBody, err))
		return
	}
	if body.Strategy != "" {
		strategy = body.Strategy
	}

	result, err := s.service.ConvertText(r.Context(), body.CSVContent, strategy)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.writeDocument(w, r, result, "converted")
}

// handleConvertUpload converts the multipart field "file". The format is
// taken from the file name.
func (s *Server) handleConvertUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Convert.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, err)
			return
		}
		respondError(w, r, fmt.Errorf("%w: %w", core.ErrInvalidBody, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: missing file field", core.ErrNoContent))
		return
	}
	defer file.Close()

	strategy := r.FormValue("strategy")
	if strategy == "" {
		strategy = r.URL.Query().Get("strategy")
	}

	result, err := s.service.Convert(r.Context(), core.ConvertRequest{
		FileName: header.Filename,
		Format:   tabular.FormatFromName(header.Filename),
		Body:     file,
		Strategy: strategy,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	base := filepath.Base(header.Filename)
	s.writeDocument(w, r, result, strings.TrimSuffix(base, filepath.Ext(base)))
}

// writeDocument sends the converted document. With ?download=1 it is sent
// as an attachment named <name>.json.
func (s *Server) writeDocument(w http.ResponseWriter, r *http.Request, result *core.ConvertResult, name string) {
	w.Header().Set("X-Conversion-ID", result.ID)
	w.Header().Set("X-Rows-Dropped", strconv.Itoa(len(result.Stats.Dropped)))

	if download, _ := strconv.ParseBool(r.URL.Query().Get("download")); download {
		if name == "" || name == "." {
			name = "converted"
		}
		w.Header().Set("Content-Disposition",
			mime.FormatMediaType("attachment", map[string]string{"filename": name + ".json"}))
	}

	writeJSON(w, r, http.StatusOK, result.Document)
}
