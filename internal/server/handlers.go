package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/kawaiicounter/pkg/badge/style"
	"github.com/matzehuels/kawaiicounter/pkg/errors"
	"github.com/matzehuels/kawaiicounter/pkg/service"
)

const maxJSONBody = 64 << 10

type createRequest struct {
	Site    string          `json:"site"`
	StartAt json.RawMessage `json:"startAt"`
	Options *style.Options  `json:"options"`
}

type createResponse struct {
	ID string `json:"id"`
}

type visitRequest struct {
	Page string `json:"page"`
}

type visitResponse struct {
	Visits int64 `json:"visits"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok")
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.svc.Create(r.Context(), service.CreateRequest{
		Site:    req.Site,
		StartAt: parseStartAt(req.StartAt),
		Options: req.Options,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, createResponse{ID: id})
}

func (s *Server) handleUploadBackground(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) || stderrors.Is(err, multipart.ErrMessageTooLarge) {
			http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "expected a multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	id := strings.TrimSpace(r.FormValue("counterId"))
	if id == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "counterId is required"))
		return
	}
	file, _, err := r.FormFile("bgImage")
	if err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "bgImage is required"))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not read bgImage"))
		return
	}

	if err := s.svc.UploadBackground(r.Context(), id, raw); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "Background uploaded")
}

func (s *Server) handleBadge(increment bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := s.format(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		page := r.URL.Query().Get("page")
		if page == "" {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "page is required"))
			return
		}

		art, err := s.svc.Badge(r.Context(), page, service.BadgeOptions{Increment: increment, Format: format})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeArtifact(w, art)
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	format, err := s.format(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	art, err := s.svc.Preview(r.Context(), r.URL.Query(), format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, art)
}

func (s *Server) handleAllCounters(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleVisit(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Page) == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "page is required"))
		return
	}

	visits, err := s.svc.Visit(r.Context(), req.Page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, visitResponse{Visits: visits})
}

// format reads ?format=, falling back to the server default.
func (s *Server) format(r *http.Request) (service.Format, error) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		return s.opts.DefaultFormat, nil
	}
	f, ok := service.ParseFormat(raw)
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidInput, "format must be svg or png")
	}
	return f, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed JSON body")
	}
	return nil
}

// parseStartAt accepts a JSON number or numeric string. Anything else is 0.
func parseStartAt(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return clampStart(t)
	case string:
		t = strings.TrimSpace(t)
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return clampStart(f)
		}
	}
	return 0
}

func clampStart(f float64) int64 {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(f)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeArtifact(w http.ResponseWriter, art service.Artifact) {
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(art.Data)
}
