// Package harness times candidate adapters against a budget and reconciles
// the results with persisted calibration and history.
package harness

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/rollbench/internal/candidate"
	"github.com/verte-zerg/rollbench/internal/model"
)

var (
	// ErrUnknownGroup reports a group that has no registered adapters.
	ErrUnknownGroup = errors.New("unknown group")
	// ErrEmptyGroup reports a group bound to no adapters.
	ErrEmptyGroup = errors.New("group has no adapters")
	// ErrDuplicateLibrary reports two adapters of one library in a group.
	ErrDuplicateLibrary = errors.New("duplicate library in group")
)

// Registry maps each statistic group to its ordered adapters.
type Registry struct {
	groups   []model.Group
	adapters map[model.Group][]candidate.Adapter
}

// NewRegistry validates bindings. Groups keep declaration order; adapters
// keep the order they were bound in.
func NewRegistry(bindings map[model.Group][]candidate.Adapter) (*Registry, error) {
	reg := &Registry{adapters: make(map[model.Group][]candidate.Adapter, len(bindings))}
	for _, group := range model.Groups() {
		adapters, ok := bindings[group]
		if !ok {
			continue
		}
		if len(adapters) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyGroup, group)
		}
		seen := make(map[model.Library]bool, len(adapters))
		for _, a := range adapters {
			if seen[a.Library()] {
				return nil, fmt.Errorf("%w: %s in %s", ErrDuplicateLibrary, a.Library(), group)
			}
			seen[a.Library()] = true
		}
		reg.groups = append(reg.groups, group)
		reg.adapters[group] = append([]candidate.Adapter(nil), adapters...)
	}
	for group := range bindings {
		if !group.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, group)
		}
	}
	return reg, nil
}

// NewModeRegistry binds every candidate library for mode.
func NewModeRegistry(mode model.Mode) (*Registry, error) {
	return NewRegistry(candidate.Bind(mode))
}

// Groups returns the registered groups in declaration order.
func (r *Registry) Groups() []model.Group {
	return append([]model.Group(nil), r.groups...)
}

// Adapters returns the adapters of group.
func (r *Registry) Adapters(group model.Group) ([]candidate.Adapter, error) {
	adapters, ok := r.adapters[group]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, group)
	}
	return adapters, nil
}

// Resolve parses a group tag and checks it is registered.
func (r *Registry) Resolve(tag string) (model.Group, error) {
	group, err := model.ParseGroup(tag)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownGroup, tag)
	}
	if _, ok := r.adapters[group]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownGroup, tag)
	}
	return group, nil
}
