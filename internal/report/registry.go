package report

import (
	"errors"
	"fmt"
	"strings"
)

// GroupingKey selects a grouping mode.
type GroupingKey string

const (
	ByCategory        GroupingKey = "category"
	ByDate            GroupingKey = "date"
	ByCategoryAndDate GroupingKey = "category_and_date"
)

// GroupingKeys lists every grouping mode a Registry must serve.
var GroupingKeys = []GroupingKey{ByCategory, ByDate, ByCategoryAndDate}

var (
	// ErrUnknownGrouping is returned by ParseGroupingKey for user input outside
	// the known modes. It is a client error.
	ErrUnknownGrouping = errors.New("unknown grouping")
	// ErrUnregisteredGrouping means a known mode has no strategy registered.
	// It is a wiring defect, not a client error.
	ErrUnregisteredGrouping = errors.New("no strategy registered for grouping")
)

// ParseGroupingKey validates a grouping mode from user input, case-insensitively.
func ParseGroupingKey(s string) (GroupingKey, error) {
	key := GroupingKey(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range GroupingKeys {
		if k == key {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGrouping, s)
}

// Registry maps grouping modes to their strategies.
type Registry struct {
	strategies map[GroupingKey]Strategy
}

// NewRegistry returns a registry with a strategy for every grouping mode.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[GroupingKey]Strategy, len(GroupingKeys))}
	r.Register(ByCategory, CategoryStrategy{})
	r.Register(ByDate, DateStrategy{})
	r.Register(ByCategoryAndDate, CategoryDateStrategy{})
	return r
}

// Register installs or replaces the strategy for key.
func (r *Registry) Register(key GroupingKey, s Strategy) {
	r.strategies[key] = s
}

// Strategy returns the strategy registered for key.
func (r *Registry) Strategy(key GroupingKey) (Strategy, error) {
	s, ok := r.strategies[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnregisteredGrouping, key)
	}
	return s, nil
}
