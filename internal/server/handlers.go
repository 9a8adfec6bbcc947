package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flexdock/pkg/analysis"
	ferrors "github.com/matzehuels/flexdock/pkg/errors"
	"github.com/matzehuels/flexdock/pkg/layout"
	"github.com/matzehuels/flexdock/pkg/observability"
	"github.com/matzehuels/flexdock/pkg/render/dot"
	"github.com/matzehuels/flexdock/pkg/session"
)

// maxBody bounds request bodies; an edit carries at most one record.
const maxBody = 1 << 20

type snapshotResponse struct {
	WidthNeeded         int              `json:"widthNeeded"`
	HeightNeeded        int              `json:"heightNeeded"`
	ActiveGroup         layout.NodeID    `json:"activeGroup,omitempty"`
	LowestPriorityGroup layout.NodeID    `json:"lowestPriorityGroup,omitempty"`
	GroupCount          int              `json:"groupCount"`
	TabCount            int              `json:"tabCount"`
	Viewport            viewport         `json:"viewport"`
	Overflow            session.Overflow `json:"overflow"`
	Layout              layout.Document  `json:"layout"`
}

type viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type stashResponse struct {
	Depth     int    `json:"depth"`
	Widths    []int  `json:"widths"`
	MaxPanels int    `json:"maxPanels"`
	Direction string `json:"direction"`
}

type templateRequest struct {
	MaxPanels int `json:"maxPanels"`
}

// editRequest names one mutation primitive of the current layout. Node is
// the node acted on; Target, Location, Index and Select apply to move and
// add; Record to add; Attrs to update.
type editRequest struct {
	Op       layout.Op      `json:"op"`
	Node     layout.NodeID  `json:"node"`
	Target   layout.NodeID  `json:"target"`
	Location string         `json:"location"`
	Index    *int           `json:"index"`
	Select   bool           `json:"select"`
	Record   *layout.Record `json:"record"`
	Attrs    *layout.Attrs  `json:"attrs"`
}

func newSnapshotResponse(st session.State) snapshotResponse {
	return snapshotResponse{
		WidthNeeded:         st.Current.WidthNeeded,
		HeightNeeded:        st.Current.HeightNeeded,
		ActiveGroup:         st.Current.ActiveGroup,
		LowestPriorityGroup: st.Current.LowestPriorityGroup,
		GroupCount:          st.Current.GroupCount,
		TabCount:            st.Current.TabCount,
		Viewport:            viewport{Width: st.Width, Height: st.Height},
		Overflow:            st.Overflow,
		Layout:              document(st.Current),
	}
}

func document(snap analysis.Snapshot) layout.Document {
	if snap.Tree == nil {
		return layout.Document{}
	}
	return snap.Tree.ToDocument()
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, newSnapshotResponse(s.sess.State()))
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	st := s.sess.State()
	if st.Current.Tree == nil {
		s.writeError(w, r, ferrors.New(ferrors.ErrCodeStashPrecondition, "session not started"))
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	fmt.Fprint(w, dot.ToDOT(st.Current.Tree, dot.Options{Detailed: r.URL.Query().Get("detailed") == "true"}))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	st := s.sess.State()
	if st.Current.Tree == nil {
		s.writeError(w, r, ferrors.New(ferrors.ErrCodeStashPrecondition, "session not started"))
		return
	}
	src := dot.ToDOT(st.Current.Tree, dot.Options{Detailed: r.URL.Query().Get("detailed") == "true"})
	svg, hit, err := dot.RenderSVGCached(r.Context(), s.cache, src)
	if err != nil {
		s.writeError(w, r, ferrors.Wrap(ferrors.ErrCodeInternal, err, "render svg"))
		return
	}
	s.logger.Debug("rendered svg", "cached", hit, "bytes", len(svg))
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (s *Server) handleStash(w http.ResponseWriter, r *http.Request) {
	st := s.sess.State()
	s.writeJSON(w, http.StatusOK, stashResponse{
		Depth:     st.Depth,
		Widths:    st.Widths,
		MaxPanels: st.MaxPanels,
		Direction: string(st.Direction),
	})
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req viewport
	if !s.readJSON(w, r, &req) {
		return
	}
	if _, err := s.sess.Resize(r.Context(), req.Width, req.Height); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSnapshotResponse(s.sess.State()))
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !s.readJSON(w, r, &req) {
		return
	}
	if err := s.sess.ReloadTemplate(r.Context(), nil, req.MaxPanels); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSnapshotResponse(s.sess.State()))
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !s.readJSON(w, r, &req) {
		return
	}
	var added layout.NodeID
	err := s.sess.Edit(func(t *layout.Tree) error {
		id, err := apply(t, req)
		added = id
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := map[string]any{"op": req.Op}
	if added != "" {
		resp["node"] = added
	}
	s.writeJSON(w, http.StatusAccepted, resp)
}

func apply(t *layout.Tree, req editRequest) (layout.NodeID, error) {
	loc, err := layout.ParseDockLocation(req.Location)
	if err != nil {
		return "", ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "edit")
	}
	index := -1
	if req.Index != nil {
		index = *req.Index
	}
	switch req.Op {
	case layout.OpMove:
		return "", t.MoveNode(req.Node, req.Target, loc, index, req.Select)
	case layout.OpAdd:
		if req.Record == nil {
			return "", ferrors.New(ferrors.ErrCodeInvalidInput, "add needs a record")
		}
		return t.AddNode(*req.Record, req.Target, loc, index, req.Select)
	case layout.OpDeleteTab:
		return "", t.DeleteTab(req.Node)
	case layout.OpDeleteTabset:
		return "", t.DeleteTabset(req.Node)
	case layout.OpSelect:
		return "", t.Select(req.Node)
	case layout.OpActivate:
		return "", t.SetActive(req.Node)
	case layout.OpUpdate:
		if req.Attrs == nil {
			return "", ferrors.New(ferrors.ErrCodeInvalidInput, "update needs attrs")
		}
		return "", t.UpdateNodeAttributes(req.Node, *req.Attrs)
	default:
		return "", ferrors.New(ferrors.ErrCodeInvalidInput, "unknown edit op %q", req.Op)
	}
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tabID")
	if err := ferrors.ValidateNodeID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.sess.Resolve(layout.NodeID(id))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, r, ferrors.Wrap(ferrors.ErrCodeInvalidFormat, err, "decode request"))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

type errorResponse struct {
	Code    ferrors.Code `json:"code,omitempty"`
	Message string       `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	route := r.URL.Path
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		route = rc.RoutePattern()
	}
	observability.HTTP().OnError(r.Context(), r.Method, route, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "route", route, "err", err)
	}
	s.writeJSON(w, status, errorResponse{Code: ferrors.GetCode(err), Message: ferrors.UserMessage(err)})
}

func statusOf(err error) int {
	switch ferrors.GetCode(err) {
	case ferrors.ErrCodeInvalidInput, ferrors.ErrCodeInvalidFormat, ferrors.ErrCodeInvalidTarget,
		ferrors.ErrCodeInvalidTemplate, ferrors.ErrCodeInvalidDirection, ferrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ferrors.ErrCodeUnknownNode, ferrors.ErrCodeNotFound:
		return http.StatusNotFound
	case ferrors.ErrCodeStashPrecondition:
		return http.StatusConflict
	case ferrors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case ferrors.ErrCodeCorruptTree, ferrors.ErrCodeInternal:
		return http.StatusInternalServerError
	}
	switch {
	case errors.Is(err, layout.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, layout.ErrDuplicateID), errors.Is(err, layout.ErrInvalidTarget),
		errors.Is(err, layout.ErrInvalidKind), errors.Is(err, layout.ErrEmptyDocument):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
