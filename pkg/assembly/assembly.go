package assembly

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lightrig/rigsnap/pkg/cache"
	"github.com/lightrig/rigsnap/pkg/catalog"
	"github.com/lightrig/rigsnap/pkg/compat"
	"github.com/lightrig/rigsnap/pkg/constrain"
	"github.com/lightrig/rigsnap/pkg/errors"
	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/geom"
	"github.com/lightrig/rigsnap/pkg/observability"
	"github.com/lightrig/rigsnap/pkg/registry"
)

// Origin records how a committed transform was produced.
type Origin uint8

const (
	// FreePlacement transforms come from the user and are constrained.
	FreePlacement Origin = iota
	// SnapSolved transforms come from the solver and are committed verbatim.
	SnapSolved
)

func (o Origin) String() string {
	if o == SnapSolved {
		return "snap-solved"
	}
	return "free-placement"
}

// MarshalText implements encoding.TextMarshaler.
func (o Origin) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Status summarises an Outcome.
type Status string

const (
	StatusPlaced   Status = "placed"
	StatusAttached Status = "attached"
	StatusMoved    Status = "moved"
	StatusRejected Status = "rejected"
)

// Outcome describes the result of one action.
type Outcome struct {
	Status     Status              `json:"status"`
	Code       errors.Code         `json:"code,omitempty"`
	Message    string              `json:"message,omitempty"`
	Origin     Origin              `json:"origin"`
	Component  *fixture.Component  `json:"component,omitempty"`
	Connection *fixture.Connection `json:"connection,omitempty"`
	Policy     string              `json:"policy,omitempty"`
	Correction *constrain.Result   `json:"correction,omitempty"`
}

// Options configures an Assembler. Zero values select defaults: the built-in
// catalogue, no caching and a discarding logger.
type Options struct {
	Room     fixture.Room
	Catalog  *catalog.Catalog
	Registry *registry.Registry
	Cache    cache.Cache
	Keyer    cache.Keyer
	CacheTTL time.Duration
	Logger   *log.Logger
}

// Assembler applies actions to one assembly.
type Assembler struct {
	room   fixture.Room
	cat    *catalog.Catalog
	reg    *registry.Registry
	solver *Solver
	logger *log.Logger

	// mu serialises check-then-commit sequences.
	mu sync.Mutex
}

// New returns an Assembler for opts.
func New(opts Options) *Assembler {
	a := &Assembler{
		room:   opts.Room,
		cat:    opts.Catalog,
		reg:    opts.Registry,
		logger: opts.Logger,
	}
	if a.cat == nil {
		a.cat = catalog.Default()
	}
	if a.reg == nil {
		a.reg = registry.New()
	}
	if a.logger == nil {
		a.logger = log.New(io.Discard)
	}
	a.solver = NewSolver(opts.Cache, opts.Keyer, opts.CacheTTL, a.logger)
	return a
}

// Room returns the room components are constrained to.
func (a *Assembler) Room() fixture.Room { return a.room }

// Catalog returns the template catalogue.
func (a *Assembler) Catalog() *catalog.Catalog { return a.cat }

// Registry returns the component registry.
func (a *Assembler) Registry() *registry.Registry { return a.reg }

// =============================================================================
// Place
// =============================================================================

// PlaceRequest asks for a new component from a template at a free position.
type PlaceRequest struct {
	Template string
	ID       string // optional; a UUID is assigned when empty
	Position geom.Vec3
	Rotation geom.Euler
	Scale    geom.Vec3 // zero keeps the template scale
}

// Place instantiates a template at a user-chosen transform, constrained to
// the room.
func (a *Assembler) Place(ctx context.Context, req PlaceRequest) (Outcome, error) {
	start := time.Now()
	if err := errors.ValidateFinite("position", req.Position.X, req.Position.Y, req.Position.Z); err != nil {
		return a.reject(ctx, "place", err)
	}
	if err := errors.ValidateFinite("rotation", req.Rotation.X, req.Rotation.Y, req.Rotation.Z); err != nil {
		return a.reject(ctx, "place", err)
	}
	if err := errors.ValidateFinite("scale", req.Scale.X, req.Scale.Y, req.Scale.Z); err != nil {
		return a.reject(ctx, "place", err)
	}

	c, err := a.cat.Get(req.Template)
	if err != nil {
		return a.reject(ctx, "place", err)
	}
	c.ID = req.ID
	c.Position = req.Position
	c.Rotation = req.Rotation
	if req.Scale != (geom.Vec3{}) {
		c.Scale = req.Scale
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	out, err := a.commit(c, FreePlacement)
	if err != nil {
		return a.reject(ctx, "place", err)
	}
	out.Status = StatusPlaced
	a.logger.Debug("placed", "id", out.Component.ID, "template", req.Template, "reason", out.Correction.Reason)
	observability.Assembly().OnPlace(ctx, c.Type.String(), out.Correction.WasCorrected, time.Since(start))
	return out, nil
}

// =============================================================================
// Attach
// =============================================================================

// AttachRequest asks for a new component from Template whose snap point
// TargetSnap joins SourceSnap on the existing component SourceID.
type AttachRequest struct {
	SourceID   string
	SourceSnap string
	Template   string
	TargetSnap string
	ID         string // optional id for the new component
}

// Attach instantiates a template snapped onto an existing component.
func (a *Assembler) Attach(ctx context.Context, req AttachRequest) (Outcome, error) {
	start := time.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	source, err := a.reg.Get(req.SourceID)
	if err != nil {
		return a.reject(ctx, "attach", err)
	}
	target, err := a.cat.Get(req.Template)
	if err != nil {
		return a.reject(ctx, "attach", err)
	}
	ssp, ok := source.Snap(req.SourceSnap)
	if !ok {
		return a.reject(ctx, "attach", errors.New(errors.ErrCodeMissingSnapPoint,
			"component %q has no snap point %q", source.ID, req.SourceSnap))
	}
	if source.IsOccupied(ssp.ID) {
		return a.reject(ctx, "attach", errors.New(errors.ErrCodeSnapPointOccupied,
			"snap point %s.%s is already connected", source.ID, ssp.ID))
	}
	tsp, ok := target.Snap(req.TargetSnap)
	if !ok {
		return a.reject(ctx, "attach", errors.New(errors.ErrCodeMissingSnapPoint,
			"template %q has no snap point %q", req.Template, req.TargetSnap))
	}

	if v := compat.Explain(ssp, source.Owner(), tsp, target.Owner()); !v.Compatible {
		return a.reject(ctx, "attach", errors.New(errors.ErrCodeIncompatible, "%s", v.Reason))
	}

	res, err := a.solver.Solve(ctx, source, ssp.ID, target, tsp.ID)
	if err != nil {
		return a.reject(ctx, "attach", err)
	}

	target.ID = req.ID
	target.SetTransform(res.Transform())
	out, err := a.commit(target, SnapSolved)
	if err != nil {
		return a.reject(ctx, "attach", err)
	}

	conn := res.Connection
	conn.TargetComponentID = out.Component.ID
	if err := a.reg.Connect(conn); err != nil {
		_, _ = a.reg.Remove(out.Component.ID)
		return a.reject(ctx, "attach", err)
	}
	out.Component, _ = a.reg.Get(out.Component.ID)

	out.Status = StatusAttached
	out.Connection = &conn
	out.Policy = res.Policy.String()
	a.logger.Debug("attached", "connection", conn.String(), "policy", out.Policy)
	observability.Assembly().OnAttach(ctx, conn.String(), out.Policy, time.Since(start))
	return out, nil
}

// Candidates lists catalogue snap points that can attach to snap point
// snapID on component id.
func (a *Assembler) Candidates(id, snapID string) ([]compat.Candidate, error) {
	source, err := a.reg.Get(id)
	if err != nil {
		return nil, err
	}
	sp, ok := source.Snap(snapID)
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingSnapPoint, "component %q has no snap point %q", id, snapID)
	}
	if source.IsOccupied(snapID) {
		return nil, nil
	}
	return compat.Candidates(sp, source.Owner(), a.cat.Templates()), nil
}

// =============================================================================
// Move, Detach, Remove
// =============================================================================

// Move drags an unconnected component to a new user-chosen transform.
func (a *Assembler) Move(ctx context.Context, id string, pos geom.Vec3, rot geom.Euler) (Outcome, error) {
	start := time.Now()
	if err := errors.ValidateFinite("position", pos.X, pos.Y, pos.Z, rot.X, rot.Y, rot.Z); err != nil {
		return a.reject(ctx, "move", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	c, err := a.reg.Get(id)
	if err != nil {
		return a.reject(ctx, "move", err)
	}
	if len(c.Occupied) > 0 {
		return a.reject(ctx, "move", errors.New(errors.ErrCodeInvalidInput,
			"component %q is connected; detach it before moving", id))
	}

	cr := constrain.ConstrainBox(c.Type, c.BoundingBox(), pos, rot, c.Transform().Scale, a.room)
	t := c.Transform()
	t.Position, t.Rotation = cr.Position, cr.Rotation
	if err := a.reg.Update(id, t); err != nil {
		return a.reject(ctx, "move", err)
	}
	c.SetTransform(t)

	observability.Assembly().OnPlace(ctx, c.Type.String(), cr.WasCorrected, time.Since(start))
	return Outcome{Status: StatusMoved, Origin: FreePlacement, Component: c, Correction: &cr}, nil
}

// Detach breaks the connection at snap point snapID on component id.
func (a *Assembler) Detach(ctx context.Context, id, snapID string) (fixture.Connection, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	conn, err := a.reg.Disconnect(id, snapID)
	if err != nil {
		observability.Assembly().OnReject(ctx, "detach", string(errors.GetCode(err)))
	}
	return conn, err
}

// Remove deletes component id and its connections.
func (a *Assembler) Remove(ctx context.Context, id string) ([]fixture.Connection, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	conns, err := a.reg.Remove(id)
	if err != nil {
		observability.Assembly().OnReject(ctx, "remove", string(errors.GetCode(err)))
	}
	return conns, err
}

// =============================================================================
// Internals
// =============================================================================

// commit stores c. Free placements pass through the boundary engine first;
// solved placements are stored as given.
func (a *Assembler) commit(c *fixture.Component, origin Origin) (Outcome, error) {
	out := Outcome{Origin: origin}
	if origin == FreePlacement {
		cr := constrain.ConstrainBox(c.Type, c.BoundingBox(), c.Position, c.Rotation, c.Transform().Scale, a.room)
		c.Position, c.Rotation = cr.Position, cr.Rotation
		out.Correction = &cr
	}
	id, err := a.reg.Add(c)
	if err != nil {
		return Outcome{}, err
	}
	out.Component, err = a.reg.Get(id)
	return out, err
}

func (a *Assembler) reject(ctx context.Context, op string, err error) (Outcome, error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	observability.Assembly().OnReject(ctx, op, string(code))
	switch code {
	case errors.ErrCodeMissingSnapPoint, errors.ErrCodeMissingComponent:
		a.logger.Warn("rejected: stale reference", "op", op, "code", code, "err", err)
	case errors.ErrCodeSolverAlignment, errors.ErrCodeInternal:
		a.logger.Error("rejected", "op", op, "code", code, "err", err)
	default:
		if errors.IsRecoverable(err) {
			a.logger.Debug("rejected", "op", op, "code", code, "err", err)
		} else {
			a.logger.Warn("rejected", "op", op, "code", code, "err", err)
		}
	}
	return Outcome{Status: StatusRejected, Code: code, Message: errors.UserMessage(err)}, err
}

// Snapshot is a point-in-time copy of an assembly.
type Snapshot struct {
	Room        fixture.Room         `json:"room"`
	Components  []*fixture.Component `json:"components"`
	Connections []fixture.Connection `json:"connections"`
}

// Snapshot copies the current assembly state.
func (a *Assembler) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		Room:        a.room,
		Components:  a.reg.Components(),
		Connections: a.reg.Connections(),
	}
}
