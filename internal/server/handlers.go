package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lightrig/rigsnap/pkg/buildinfo"
	"github.com/lightrig/rigsnap/pkg/compat"
	"github.com/lightrig/rigsnap/pkg/constrain"
	"github.com/lightrig/rigsnap/pkg/errors"
	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/geom"
	"github.com/lightrig/rigsnap/pkg/solver"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// =============================================================================
// Wire types
// =============================================================================

// componentRef names a component either inline or by template slug. An
// inline component wins when both are set. Position and Rotation (radians)
// override the template transform.
type componentRef struct {
	Template  string             `json:"template,omitempty"`
	Component *fixture.Component `json:"component,omitempty"`
	Position  *geom.Vec3         `json:"position,omitempty"`
	Rotation  *geom.Euler        `json:"rotation,omitempty"`
}

type endpointRef struct {
	componentRef
	Snap string `json:"snap"`
}

type pairRequest struct {
	Source endpointRef `json:"source"`
	Target endpointRef `json:"target"`
}

type constrainRequest struct {
	componentRef
	Type  string        `json:"type,omitempty"`
	Scale *geom.Vec3    `json:"scale,omitempty"`
	Room  *fixture.Room `json:"room,omitempty"`
}

type compatibleResponse struct {
	Compatible bool   `json:"compatible"`
	Rule       int    `json:"rule"`
	Reason     string `json:"reason"`
}

type solveResponse struct {
	Status string         `json:"status"`
	Result *solver.Result `json:"result,omitempty"`
}

type rejection struct {
	Status  string      `json:"status"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Catalog.Templates())
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.cfg.Catalog.Get(chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleCompatible(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if !s.decode(w, r, &req) {
		return
	}
	src, ssp, err := s.resolveEndpoint(req.Source)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	dst, tsp, err := s.resolveEndpoint(req.Target)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	v := compat.Explain(ssp, src.Owner(), tsp, dst.Owner())
	writeJSON(w, http.StatusOK, compatibleResponse{Compatible: v.Compatible, Rule: v.Rule, Reason: v.Reason})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if !s.decode(w, r, &req) {
		return
	}
	src, ssp, err := s.resolveEndpoint(req.Source)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	dst, tsp, err := s.resolveEndpoint(req.Target)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	if v := compat.Explain(ssp, src.Owner(), tsp, dst.Owner()); !v.Compatible {
		s.respondFailure(w, errors.New(errors.ErrCodeIncompatible, "%s", v.Reason))
		return
	}
	res, err := s.solver.Solve(r.Context(), src, ssp.ID, dst, tsp.ID)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, solveResponse{Status: "solved", Result: &res})
}

func (s *Server) handleConstrain(w http.ResponseWriter, r *http.Request) {
	var req constrainRequest
	if !s.decode(w, r, &req) {
		return
	}

	var c *fixture.Component
	switch {
	case req.Component != nil || req.Template != "":
		var err error
		if c, err = s.resolveComponent(req.componentRef); err != nil {
			s.respondFailure(w, err)
			return
		}
	case req.Type != "":
		tag, err := fixture.ParseTypeTag(req.Type)
		if err != nil {
			s.respondFailure(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "type"))
			return
		}
		c = &fixture.Component{Type: tag}
		s.applyTransform(c, req.componentRef)
	default:
		s.respondFailure(w, errors.New(errors.ErrCodeInvalidInput, "one of component, template or type is required"))
		return
	}
	if req.Scale != nil {
		c.Scale = *req.Scale
	}

	room := s.cfg.Room
	if req.Room != nil {
		room = *req.Room
	}
	t := c.Transform()
	if err := errors.ValidateFinite("transform",
		t.Position.X, t.Position.Y, t.Position.Z,
		t.Rotation.X, t.Rotation.Y, t.Rotation.Z,
		t.Scale.X, t.Scale.Y, t.Scale.Z); err != nil {
		s.respondFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, constrain.ConstrainBox(c.Type, c.BoundingBox(), t.Position, t.Rotation, t.Scale, room))
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) resolveComponent(ref componentRef) (*fixture.Component, error) {
	var c *fixture.Component
	switch {
	case ref.Component != nil:
		c = ref.Component.Clone()
		if err := c.Validate(); err != nil {
			return nil, err
		}
	case ref.Template != "":
		tpl, err := s.cfg.Catalog.Get(ref.Template)
		if err != nil {
			return nil, err
		}
		c = tpl
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "component or template is required")
	}
	s.applyTransform(c, ref)
	return c, nil
}

func (s *Server) applyTransform(c *fixture.Component, ref componentRef) {
	if ref.Position != nil {
		c.Position = *ref.Position
	}
	if ref.Rotation != nil {
		c.Rotation = *ref.Rotation
	}
}

func (s *Server) resolveEndpoint(ref endpointRef) (*fixture.Component, fixture.SnapPoint, error) {
	c, err := s.resolveComponent(ref.componentRef)
	if err != nil {
		return nil, fixture.SnapPoint{}, err
	}
	sp, ok := c.Snap(ref.Snap)
	if !ok {
		return nil, fixture.SnapPoint{}, errors.New(errors.ErrCodeMissingSnapPoint, "%s has no snap point %q", describe(c), ref.Snap)
	}
	return c, sp, nil
}

func describe(c *fixture.Component) string {
	switch {
	case c.ID != "":
		return "component " + c.ID
	case c.Template != "":
		return "template " + c.Template
	}
	return "component"
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return false
	}
	return true
}

// respondFailure maps an engine error to a response. Recoverable failures
// are rejections, bad input is a client error, anything else is a server
// error.
func (s *Server) respondFailure(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	switch {
	case errors.IsRecoverable(err):
		writeJSON(w, http.StatusOK, rejection{Status: "rejected", Code: code, Message: errors.UserMessage(err)})
	case code == errors.ErrCodeInvalidInput || code == errors.ErrCodeInvalidID || code == errors.ErrCodeInvalidFormat:
		s.writeError(w, http.StatusBadRequest, err)
	case code == errors.ErrCodeSolverAlignment:
		s.logger.Error("solver alignment failure", "err", err)
		writeJSON(w, http.StatusOK, rejection{Status: "rejected", Code: code, Message: errors.UserMessage(err)})
	default:
		s.logger.Error("request failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
