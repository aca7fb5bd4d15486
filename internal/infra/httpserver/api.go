package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
	"github.com/bryanwahyu/enquiry-console/internal/middleware"
)

func enquiryID(req *http.Request) (domain.ID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateEnquiryID(id); err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return domain.ID(id), nil
}

// GET /api/enquiries?limit=15&cursor=<token>
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	limit := middleware.ValidateLimit(q.Get("limit"), r.limit)

	var after *domain.Cursor
	if token := q.Get("cursor"); token != "" {
		cur, err := domain.DecodeCursor(token)
		if err != nil {
			return err
		}
		after = &cur
	}

	res, err := r.svc.List(req.Context(), after, limit)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /api/enquiries/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := enquiryID(req)
	if err != nil {
		return err
	}
	e, err := r.svc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, e)
}

// PATCH /api/enquiries/{id}
// Body: {"attended": true}
func (r *Router) handlePatch(w http.ResponseWriter, req *http.Request) error {
	id, err := enquiryID(req)
	if err != nil {
		return err
	}
	var body struct {
		Attended *bool `json:"attended"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if body.Attended == nil || !*body.Attended {
		return fmt.Errorf("%w: only {\"attended\": true} is accepted", domain.ErrInvalidUpdate)
	}

	err = r.svc.MarkAttended(req.Context(), id)
	middleware.ObserveMutation(middleware.ActionAttend, err)
	if err != nil {
		return err
	}
	e, err := r.svc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, e)
}

// DELETE /api/enquiries/{id}
func (r *Router) handleDeleteAPI(w http.ResponseWriter, req *http.Request) error {
	id, err := enquiryID(req)
	if err != nil {
		return err
	}
	err = r.svc.Delete(req.Context(), id)
	middleware.ObserveMutation(middleware.ActionDelete, err)
	if err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
