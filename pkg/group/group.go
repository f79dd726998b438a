// Package group partitions components by value and orders them naturally.
//
// A group is every component sharing a Comment (its value label, such as
// "10k" or "100n"). Members are sorted by designator in natural order and
// groups are ordered by their first member, so a board's groups always list
// the same way regardless of the order the pick-and-place file used.
package group

import (
	"slices"
	"strings"

	"github.com/matzehuels/boardview/pkg/board"
)

// Group is the set of components sharing one value.
type Group struct {
	Value      string            `json:"value"`
	Components []board.Component `json:"components"`
}

// Designators returns member designators in natural order.
func (g Group) Designators() []string {
	out := make([]string, len(g.Components))
	for i, c := range g.Components {
		out[i] = c.Designator
	}
	return out
}

// Label joins the designators for display, e.g. "R1, R2, R10".
func (g Group) Label() string {
	return strings.Join(g.Designators(), ", ")
}

// Description is the first member's description.
func (g Group) Description() string {
	if len(g.Components) == 0 {
		return ""
	}
	return g.Components[0].Description
}

// Tooltip is the label followed by the description.
func (g Group) Tooltip() string {
	return g.Label() + ": " + g.Description()
}

// Build groups components by Comment. When filter is non-nil only
// components on that face are kept. Groups are returned ordered by the
// natural key of their first member; ties keep discovery order.
func Build(components []board.Component, filter *board.Face) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, c := range components {
		if filter != nil && c.Face != *filter {
			continue
		}
		i, ok := index[c.Comment]
		if !ok {
			i = len(groups)
			index[c.Comment] = i
			groups = append(groups, Group{Value: c.Comment})
		}
		groups[i].Components = append(groups[i].Components, c)
	}

	for i := range groups {
		sortComponents(groups[i].Components)
	}
	slices.SortStableFunc(groups, func(a, b Group) int {
		return CompareNatural(a.Components[0].Designator, b.Components[0].Designator)
	})
	return groups
}

func sortComponents(cs []board.Component) {
	keys := make(map[string]Key, len(cs))
	for _, c := range cs {
		keys[c.Designator] = NaturalKey(c.Designator)
	}
	slices.SortStableFunc(cs, func(a, b board.Component) int {
		return keys[a.Designator].Compare(keys[b.Designator])
	})
}

// Flatten concatenates the members of every group in order.
func Flatten(groups []Group) []board.Component {
	var out []board.Component
	for _, g := range groups {
		out = append(out, g.Components...)
	}
	return out
}

// Find returns the group with the given value.
func Find(groups []Group, value string) (Group, bool) {
	for _, g := range groups {
		if g.Value == value {
			return g, true
		}
	}
	return Group{}, false
}
