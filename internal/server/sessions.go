package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/orgtower/pkg/canvas"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/session"
)

type createSessionRequest struct {
	View *canvas.ViewState `json:"view,omitempty"`
}

// sessionResponse is a session plus what a remote viewer needs to draw it.
type sessionResponse struct {
	*session.Session
	State     string       `json:"state"`
	Transform string       `json:"transform"`
	Selected  []hris.Field `json:"selected,omitempty"`
}

// POST /sessions creates a viewer session in the default view, or in the
// view given in the body.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current()
	if err != nil {
		writeError(w, err)
		return
	}
	var req createSessionRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	c := canvas.New(snap.layout, s.opts.Canvas)
	if req.View != nil {
		c = canvas.Restore(snap.layout, s.opts.Canvas, *req.View)
	}
	sess := session.New(c.View(), s.opts.SessionTTL)
	sess.RosterHash = snap.hash
	if err := s.opts.Sessions.Set(r.Context(), sess); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.describe(sess, c))
}

// GET /sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current()
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.loadSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	c := s.controller(snap, sess)
	writeJSON(w, http.StatusOK, s.describe(sess, c))
}

// DELETE /sessions/{id}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /sessions/{id}/events applies one pointer, wheel or button event and
// returns the updated session. The session is rebased onto the current
// layout first, so a selection removed by a roster refresh is dropped.
func (s *Server) handleSessionEvent(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current()
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.loadSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var ev session.Event
	if err := readJSON(w, r, &ev); err != nil {
		writeError(w, err)
		return
	}

	c := s.controller(snap, sess)
	if err := session.Apply(c, ev); err != nil {
		writeError(w, err)
		return
	}

	sess.View = c.View()
	sess.Gesture = c.Gesture()
	sess.RosterHash = snap.hash
	sess.Touch(s.opts.SessionTTL)
	if err := s.opts.Sessions.Set(r.Context(), sess); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.describe(sess, c))
}

func (s *Server) loadSession(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.opts.Sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found or expired", id)
	}
	return sess, nil
}

// controller rebuilds the session's controller on the snapshot's layout.
func (s *Server) controller(snap *snapshot, sess *session.Session) *canvas.Controller {
	c := canvas.Restore(snap.layout, s.opts.Canvas, sess.View)
	c.Resume(sess.Gesture)
	sess.View = c.View()
	return c
}

func (s *Server) describe(sess *session.Session, c *canvas.Controller) sessionResponse {
	resp := sessionResponse{
		Session:   sess,
		State:     c.State().String(),
		Transform: c.Transform(),
	}
	if n, ok := c.Selected(); ok {
		resp.Selected = hris.Detail(n.Employee)
	}
	return resp
}
