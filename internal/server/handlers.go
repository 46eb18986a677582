package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/aretw0/dailynotes/pkg/core"
)

type contentRequest struct {
	Content        string `json:"content"`
	IsQuickCapture bool   `json:"is_quick_capture"`
}

type contentResponse struct {
	Content string `json:"content"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleReadToday(w http.ResponseWriter, r *http.Request) {
	text, err := s.store.ReadToday(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contentResponse{Content: text})
}

func (s *Server) handleSaveToday(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	text, err := s.store.SaveToday(r.Context(), req.Content)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contentResponse{Content: text})
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	text, err := s.store.Append(r.Context(), req.Content, req.IsQuickCapture)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contentResponse{Content: text})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	policy, err := s.policyFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	notes, err := s.store.GetRecentNotes(r.Context(), policy)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if notes == nil {
		notes = []core.DayNote{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) policyFrom(r *http.Request) (core.RecentPolicy, error) {
	q := r.URL.Query()
	days, hours := q.Get("days"), q.Get("hours")
	switch {
	case days != "" && hours != "":
		return core.RecentPolicy{}, fmt.Errorf("%w: days and hours are exclusive", core.ErrInvalidPolicy)
	case days != "":
		from, to, err := core.ParseDayRange(days)
		if err != nil {
			return core.RecentPolicy{}, err
		}
		return core.CalendarDays(from, to), nil
	case hours != "":
		h, err := strconv.Atoi(hours)
		if err != nil {
			return core.RecentPolicy{}, fmt.Errorf("%w: hours %q", core.ErrInvalidPolicy, hours)
		}
		return core.RollingHours(h), nil
	}
	return s.policy, nil
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var query core.ListQuery
	var err error
	if query.Limit, err = intParam(q.Get("limit")); err != nil {
		s.writeError(w, err)
		return
	}
	if query.Offset, err = intParam(q.Get("offset")); err != nil {
		s.writeError(w, err)
		return
	}
	if v := q.Get("quick_capture"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, badRequest("quick_capture must be a boolean"))
			return
		}
		query.QuickCapture = &b
	}

	page, err := s.store.ListNotes(r.Context(), query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if page.Notes == nil {
		page.Notes = []core.NoteEntry{}
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req contentRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	entry, err := s.store.UpdateNote(r.Context(), id, req.Content)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeleteNote(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		s.store.ComponentType(): s.store.State(),
	})
}

// errBadRequest marks malformed input.
var errBadRequest = errors.New("bad request")

func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", errBadRequest, msg)
}

// errUnsupportedMedia marks a request body that is not JSON.
var errUnsupportedMedia = errors.New("request body must be application/json")

// errForbiddenOrigin marks a browser request from an origin outside the policy.
var errForbiddenOrigin = errors.New("origin not allowed")

func decode(r *http.Request, v any) error {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		return errUnsupportedMedia
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("note id must be a positive integer")
	}
	return id, nil
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, badRequest(fmt.Sprintf("%q is not a non-negative integer", v))
	}
	return n, nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, errForbiddenOrigin):
		return http.StatusForbidden
	case errors.Is(err, core.ErrUnsupported),
		errors.Is(err, core.ErrInvalidPolicy),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
