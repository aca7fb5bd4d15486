package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/bryanwahyu/enquiry-console/internal/application/console"
	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
	"github.com/bryanwahyu/enquiry-console/internal/logger"
	"github.com/bryanwahyu/enquiry-console/internal/middleware"
)

// SessionCookie holds the console session id
const SessionCookie = "console_session"

// session resolves the caller's console, issuing a cookie for new sessions
func (r *Router) session(w http.ResponseWriter, req *http.Request) (*console.Session, context.Context) {
	var id string
	if c, err := req.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	sess := r.sessions.Get(id)
	if sess.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess, logger.WithSession(req.Context(), sess.ID)
}

func backToConsole(w http.ResponseWriter, req *http.Request) {
	http.Redirect(w, req, "/", http.StatusSeeOther)
}

// fetchFailed surfaces a navigation failure on the next render
func fetchFailed(ctx context.Context, sess *console.Session, err error) {
	if err == nil {
		return
	}
	sess.Flash.Notify(ctx, console.Notice{Kind: console.NoticeError, Message: err.Error()})
}

// GET /  (?reload=1 starts over from page 1)
func (r *Router) handleConsole(w http.ResponseWriter, req *http.Request) {
	sess, ctx := r.session(w, req)
	if !sess.Console.Mounted() || req.URL.Query().Get("reload") == "1" {
		fetchFailed(ctx, sess, sess.Console.Mount(ctx))
	}
	r.pages.render(w, req, "console.html", consoleView{
		Snapshot: sess.Console.Snapshot(),
		Notices:  sess.Flash.Drain(),
	})
}

// POST /pages/next
func (r *Router) handleNext(w http.ResponseWriter, req *http.Request) {
	sess, ctx := r.session(w, req)
	fetchFailed(ctx, sess, sess.Console.GoToNextPage(ctx))
	backToConsole(w, req)
}

// POST /pages/previous
func (r *Router) handlePrevious(w http.ResponseWriter, req *http.Request) {
	sess, ctx := r.session(w, req)
	fetchFailed(ctx, sess, sess.Console.GoToPreviousPage(ctx))
	backToConsole(w, req)
}

// POST /enquiries/{id}/attend
func (r *Router) handleAttend(w http.ResponseWriter, req *http.Request) {
	id, err := enquiryID(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess, ctx := r.session(w, req)
	// the console already notified the user about a failed update
	updated, err := sess.Console.MarkAttended(ctx, id)
	if updated {
		middleware.ObserveMutation(middleware.ActionAttend, nil)
		fetchFailed(ctx, sess, err)
	} else {
		middleware.ObserveMutation(middleware.ActionAttend, err)
	}
	backToConsole(w, req)
}

// GET /enquiries/{id}/delete
func (r *Router) handleConfirmDelete(w http.ResponseWriter, req *http.Request) {
	id, err := enquiryID(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess, ctx := r.session(w, req)
	e, err := r.svc.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.C(ctx).Error().Err(err).Str("enquiry_id", string(id)).Msg("loading enquiry failed")
		}
		sess.Flash.Notify(ctx, console.Notice{Kind: console.NoticeError, Message: err.Error()})
		backToConsole(w, req)
		return
	}
	r.pages.render(w, req, "confirm.html", confirmView{
		ID:      id,
		Prompt:  console.DeletePrompt,
		Enquiry: e,
		Notices: sess.Flash.Drain(),
	})
}

// POST /enquiries/{id}/delete  confirm=yes|no
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) {
	id, err := enquiryID(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess, ctx := r.session(w, req)
	answer := console.Answer(req.PostFormValue("confirm") == "yes")

	deleted, err := sess.Console.DeleteEnquiry(ctx, id, answer)
	switch {
	case deleted:
		middleware.ObserveMutation(middleware.ActionDelete, nil)
		fetchFailed(ctx, sess, err)
	case err != nil:
		middleware.ObserveMutation(middleware.ActionDelete, err)
	}
	backToConsole(w, req)
}
