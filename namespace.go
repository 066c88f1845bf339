package tonic

import (
	"fmt"
	"maps"
	"slices"
)

// Namespace groups the configurables that share one pool of parameter values.
type Namespace struct {
	id      string
	params  map[string]struct{}
	members map[string]*Configurable
}

func newNamespace(id string) *Namespace {
	return &Namespace{
		id:      id,
		params:  make(map[string]struct{}),
		members: make(map[string]*Configurable),
	}
}

// registerMember adds c and its parameter names to the namespace.
func (n *Namespace) registerMember(c *Configurable) error {
	if _, exists := n.members[c.id]; exists {
		return fmt.Errorf("%w: %s in %s", ErrDuplicateMember, c.id, n.id)
	}
	n.members[c.id] = c
	for _, name := range c.params {
		n.params[name] = struct{}{}
	}
	return nil
}

// ID returns the namespace id.
func (n *Namespace) ID() string { return n.id }

// Contains reports whether any member declares the parameter.
func (n *Namespace) Contains(param string) bool {
	_, ok := n.params[param]
	return ok
}

// ParamNames returns the sorted union of member parameter names.
func (n *Namespace) ParamNames() []string {
	return slices.Sorted(maps.Keys(n.params))
}

// Members returns the sorted ids of the member configurables.
func (n *Namespace) Members() []string {
	return slices.Sorted(maps.Keys(n.members))
}

// defaultOf returns the default value of param declared by the first member
// (by id) that has it.
func (n *Namespace) defaultOf(param string) (any, bool) {
	for _, id := range n.Members() {
		if v, ok := n.members[id].defaults[param]; ok {
			return v, true
		}
	}
	return nil, false
}
