package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/canvasflow/pkg/canvas"
	cferrors "github.com/matzehuels/canvasflow/pkg/errors"
	"github.com/matzehuels/canvasflow/pkg/export"
	"github.com/matzehuels/canvasflow/pkg/layout"
	"github.com/matzehuels/canvasflow/pkg/pipeline"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

// SessionResponse describes a session and its scene.
type SessionResponse struct {
	ID    string       `json:"id"`
	Scene *scene.Graph `json:"scene"`
}

// AddNodeRequest is the body of POST /sessions/{id}/nodes.
type AddNodeRequest struct {
	Shape    string         `json:"shape"`
	Position scene.Position `json:"position"`
}

// ConnectRequest is the body of POST /sessions/{id}/edges.
type ConnectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// UpdateNodeRequest is the body of PATCH /sessions/{id}/nodes/{nodeID}.
// Absent fields are left unchanged.
type UpdateNodeRequest struct {
	Title    *string         `json:"title,omitempty"`
	Position *scene.Position `json:"position,omitempty"`
}

// SelectRequest is the body of PUT /sessions/{id}/selection.
type SelectRequest struct {
	NodeID string `json:"node_id"`
}

// SelectionResponse reports the current selection.
type SelectionResponse struct {
	Selected string `json:"selected"`
}

// withSession looks up the session named in the URL and runs fn with its
// canvas locked.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(sess *session)) {
	sess, err := s.sessions.get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess, err := s.sessions.create()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.logger.Debug("session created", "id", sess.id)
	s.respondJSON(w, http.StatusCreated, SessionResponse{ID: sess.id, Scene: sess.canvas.Scene()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		s.respondJSON(w, http.StatusOK, SessionResponse{ID: sess.id, Scene: sess.canvas.Scene()})
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !s.sessions.remove(id) {
		s.respondError(w, cferrors.New(cferrors.ErrCodeSessionNotFound, "session %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		s.respondJSON(w, http.StatusOK, sess.canvas.Reset())
	})
}

// handleApply lays out a description and merges it into the session's
// scene. A malformed description leaves the scene untouched.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var d layout.Description
	if err := decodeJSON(r, &d); err != nil {
		s.respondError(w, err)
		return
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	s.withSession(w, r, func(sess *session) {
		opts := pipeline.Options{Config: sess.canvas.Config(), Refresh: refresh, Logger: s.logger}
		res, err := s.runner.Layout(r.Context(), d, sess.canvas.IDs(), opts)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, sess.canvas.Merge(res))
	})
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req AddNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	s.withSession(w, r, func(sess *session) {
		s.respondJSON(w, http.StatusCreated, sess.canvas.AddNode(req.Shape, req.Position))
	})
}

// handleUpdateNode applies a title and/or position change. Unlike the
// engine's soft no-op, a missing node is a 404 here since it names a
// resource.
func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	var req UpdateNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	s.withSession(w, r, func(sess *session) {
		if _, ok := sess.canvas.Scene().Node(nodeID); !ok {
			s.respondError(w, cferrors.New(cferrors.ErrCodeNotFound, "node %q not found", nodeID))
			return
		}
		var m canvas.Mutation
		if req.Title != nil {
			m = sess.canvas.SetTitle(nodeID, *req.Title)
		}
		if req.Position != nil {
			m = sess.canvas.MoveNode(nodeID, *req.Position)
		}
		s.respondJSON(w, http.StatusOK, m)
	})
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	s.withSession(w, r, func(sess *session) {
		s.respondJSON(w, http.StatusOK, sess.canvas.DeleteNode(nodeID))
	})
}

// handleConnect adds an edge. Unknown endpoints produce an empty mutation.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	s.withSession(w, r, func(sess *session) {
		s.respondJSON(w, http.StatusOK, sess.canvas.Connect(req.Source, req.Target))
	})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	edgeID := chi.URLParam(r, "edgeID")
	s.withSession(w, r, func(sess *session) {
		s.respondJSON(w, http.StatusOK, sess.canvas.Disconnect(edgeID))
	})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	s.withSession(w, r, func(sess *session) {
		sess.canvas.SelectNode(req.NodeID)
		s.respondJSON(w, http.StatusOK, SelectionResponse{Selected: sess.canvas.Selected()})
	})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		sess.canvas.ClearSelection()
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handleDeleteSelected(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		s.respondJSON(w, http.StatusOK, sess.canvas.DeleteSelectedNode())
	})
}

// handleExport encodes the session's scene. The format defaults to JSON.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("format")
	if name == "" {
		name = string(export.FormatJSON)
	}
	f, err := export.ParseFormat(name)
	if err != nil {
		s.respondError(w, cferrors.Wrap(cferrors.ErrCodeInvalidFormat, err, "unknown export format %q", name))
		return
	}

	s.withSession(w, r, func(sess *session) {
		opts := pipeline.Options{Formats: []string{string(f)}, Title: q.Get("title"), Logger: s.logger}
		artifacts, err := s.runner.Export(r.Context(), sess.canvas.Scene(), opts)
		if err != nil {
			s.respondError(w, cferrors.Wrap(cferrors.ErrCodeInternal, err, "export %s", f))
			return
		}
		data := artifacts[string(f)]
		w.Header().Set("Content-Type", f.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", export.Filename(f, s.now())))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			s.logger.Warn("write export", "err", err)
		}
	})
}
