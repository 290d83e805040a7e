package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/plancheck/internal/doctree"
	"github.com/dgallion1/plancheck/internal/lint"
	"github.com/dgallion1/plancheck/internal/parser"
	"github.com/dgallion1/plancheck/internal/runner"
)

// handleCheck validates one uploaded plan document. Multipart fields:
// "plan" (required) and "template" (optional, falling back to the
// server's global template). Responds with the aggregated report.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	planName, planData, err := s.formDocument(r, "plan")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The template field is optional; anything other than an absent field
	// is a client error, not a cue to fall back to the global template.
	tmpl := s.global
	tmplName, tmplData, err := s.formDocument(r, "template")
	switch {
	case err == nil:
		tmpl, err = parseUpload(tmplName, tmplData)
		if err != nil {
			jsonError(w, "template: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
	case !errors.Is(err, http.ErrMissingFile):
		jsonError(w, "template: "+err.Error(), http.StatusBadRequest)
		return
	}
	if tmpl == nil {
		jsonError(w, "no template: upload one or configure PLANCHECK_TEMPLATE", http.StatusBadRequest)
		return
	}

	plan, err := parseUpload(planName, planData)
	if err != nil {
		jsonError(w, "plan: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	rep := runner.Report{File: planName}
	rep.Violations = runner.Check(tmpl, plan, s.opt)
	if parser.IsTextFormat(planName) {
		rep.Issues = lint.Check(planName, string(planData), s.cfg.LineLimit)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"file":       rep.File,
		"passed":     !rep.Failed(),
		"violations": rep.Violations,
		"issues":     rep.Issues,
		"message":    rep.Message(),
	})
}

// formDocument reads one uploaded file from the multipart form.
func (s *Server) formDocument(r *http.Request, field string) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("%s is required: %w", field, err)
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		return "", nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}

	data, err := readLimited(file, s.cfg.MaxUploadBytes)
	if err != nil {
		return "", nil, err
	}
	return filename, data, nil
}

func readLimited(file multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", limit)
	}
	return data, nil
}

func parseUpload(filename string, data []byte) (*doctree.Document, error) {
	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	return p.Parse(bytes.NewReader(data), filename)
}

// sanitizeFilename strips any path components from an uploaded name.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
