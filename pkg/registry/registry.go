// Package registry holds the components of an assembly and the connections
// between them.
//
// The registry is the single owner of component state. Callers receive
// copies; mutations go through [Registry.Update], [Registry.Connect],
// [Registry.Disconnect] and [Registry.Remove], which keep snap point
// occupancy and the connection list consistent. All methods are safe for
// concurrent use.
package registry

import (
	stderrors "errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/lightrig/rigsnap/pkg/errors"
	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/geom"
)

// ErrNotFound is wrapped by every lookup of an unknown component id.
var ErrNotFound = stderrors.New("component not found")

// Registry is an arena of components keyed by id.
type Registry struct {
	mu          sync.RWMutex
	order       []string
	components  map[string]*fixture.Component
	connections []fixture.Connection
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{components: make(map[string]*fixture.Component)}
}

// Add stores a copy of c and returns its id. An empty id gets a fresh UUID.
func (r *Registry) Add(c *fixture.Component) (string, error) {
	c = c.Clone()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := errors.ValidateID("component", c.ID); err != nil {
		return "", err
	}
	// Occupancy is owned by the registry and rebuilt from connections.
	c.Occupied = nil
	if err := c.Validate(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.components[c.ID]; dup {
		return "", errors.New(errors.ErrCodeInvalidID, "component %q already exists", c.ID)
	}
	r.components[c.ID] = c
	r.order = append(r.order, c.ID)
	return c.ID, nil
}

// Get returns a copy of component id.
func (r *Registry) Get(id string) (*fixture.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.components[id]
	return ok
}

// Len returns the number of components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Update replaces the transform of component id.
func (r *Registry) Update(id string, t geom.Transform) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.lookup(id)
	if err != nil {
		return err
	}
	c.SetTransform(t)
	return nil
}

// Connect records conn and marks both snap points occupied. Either both
// endpoints are updated or neither is.
func (r *Registry) Connect(conn fixture.Connection) error {
	if conn.SourceComponentID == conn.TargetComponentID {
		return errors.New(errors.ErrCodeInvalidInput, "cannot connect component %q to itself", conn.SourceComponentID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	src, err := r.lookup(conn.SourceComponentID)
	if err != nil {
		return err
	}
	dst, err := r.lookup(conn.TargetComponentID)
	if err != nil {
		return err
	}
	if err := checkFree(src, conn.SourceSnapPointID); err != nil {
		return err
	}
	if err := checkFree(dst, conn.TargetSnapPointID); err != nil {
		return err
	}

	occupy(src, conn.SourceSnapPointID)
	occupy(dst, conn.TargetSnapPointID)
	r.connections = append(r.connections, conn)
	return nil
}

// Disconnect removes the connection that occupies snap point snapID on
// component id and frees both of its endpoints.
func (r *Registry) Disconnect(id, snapID string) (fixture.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.lookup(id); err != nil {
		return fixture.Connection{}, err
	}
	for i, conn := range r.connections {
		if ep, ok := conn.Endpoint(id); ok && ep == snapID {
			r.release(conn)
			r.connections = slices.Delete(r.connections, i, i+1)
			return conn, nil
		}
	}
	return fixture.Connection{}, errors.New(errors.ErrCodeNotFound, "snap point %s.%s is not connected", id, snapID)
}

// Remove deletes component id together with every connection touching it.
// Partner snap points are freed. The removed connections are returned.
func (r *Registry) Remove(id string) ([]fixture.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.lookup(id); err != nil {
		return nil, err
	}
	var removed []fixture.Connection
	kept := r.connections[:0]
	for _, conn := range r.connections {
		if conn.Involves(id) {
			r.release(conn)
			removed = append(removed, conn)
			continue
		}
		kept = append(kept, conn)
	}
	r.connections = kept
	delete(r.components, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return removed, nil
}

// Components returns copies of all components in insertion order.
func (r *Registry) Components() []*fixture.Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*fixture.Component, len(r.order))
	for i, id := range r.order {
		out[i] = r.components[id].Clone()
	}
	return out
}

// Connections returns all connections in the order they were made.
func (r *Registry) Connections() []fixture.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.connections)
}

// ConnectionsOf returns the connections touching component id.
func (r *Registry) ConnectionsOf(id string) []fixture.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []fixture.Connection
	for _, conn := range r.connections {
		if conn.Involves(id) {
			out = append(out, conn)
		}
	}
	return out
}

func (r *Registry) lookup(id string) (*fixture.Component, error) {
	c, ok := r.components[id]
	if !ok {
		return nil, errors.Wrap(errors.ErrCodeMissingComponent, ErrNotFound, "component %q not found", id)
	}
	return c, nil
}

func (r *Registry) release(conn fixture.Connection) {
	if c, ok := r.components[conn.SourceComponentID]; ok {
		delete(c.Occupied, conn.SourceSnapPointID)
	}
	if c, ok := r.components[conn.TargetComponentID]; ok {
		delete(c.Occupied, conn.TargetSnapPointID)
	}
}

func checkFree(c *fixture.Component, snapID string) error {
	if _, ok := c.Snap(snapID); !ok {
		return errors.New(errors.ErrCodeMissingSnapPoint, "component %q has no snap point %q", c.ID, snapID)
	}
	if c.IsOccupied(snapID) {
		return errors.New(errors.ErrCodeSnapPointOccupied, "snap point %s.%s is already connected", c.ID, snapID)
	}
	return nil
}

func occupy(c *fixture.Component, snapID string) {
	if c.Occupied == nil {
		c.Occupied = make(map[string]bool)
	}
	c.Occupied[snapID] = true
}
