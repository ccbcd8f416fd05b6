package feature

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownFeature = errors.New("feature: unknown feature")
	ErrCycle          = errors.New("feature: dependency cycle")
)

// Name is a feature flag.
type Name string

const (
	Default Name = "default"
	Full    Name = "full"
	Std     Name = "std"
	Extra   Name = "extra"
	Net     Name = "net"
	Ptr     Name = "ptr"
	Thread  Name = "thread"
	Crypto  Name = "crypto"
	Linear  Name = "linear"
	Log     Name = "log"
	Chrono  Name = "chrono"
)

// Graph maps each feature to the features it enables.
type Graph map[Name][]Name

// Manifest returns a fresh copy of the ptstd feature graph.
func Manifest() Graph {
	return Graph{
		Default: {Full},
		Full:    {Std, Extra},
		Std:     {Net, Ptr, Thread},
		Extra:   {Crypto, Linear, Log, Chrono},
		Net:     nil,
		Ptr:     nil,
		Thread:  nil,
		Crypto:  nil,
		Linear:  nil,
		Log:     nil,
		Chrono:  nil,
	}
}

// Set is a sorted, de-duplicated list of feature names.
type Set []Name

// Has reports whether n is in s.
func (s Set) Has(n Name) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= n })
	return i < len(s) && s[i] == n
}

// Names returns the names as plain strings.
func (s Set) Names() []string {
	out := make([]string, len(s))
	for i, n := range s {
		out[i] = string(n)
	}
	return out
}

// IsLeaf reports whether n enables nothing else.
func (g Graph) IsLeaf(n Name) bool {
	deps, ok := g[n]
	return ok && len(deps) == 0
}

// Resolve returns the transitive closure of names, including names
// themselves. With no names it resolves Default.
func (g Graph) Resolve(names ...Name) (Set, error) {
	if len(names) == 0 {
		names = []Name{Default}
	}

	const (
		visiting = 1
		done     = 2
	)
	state := make(map[Name]int)
	var visit func(n Name, path []Name) error
	visit = func(n Name, path []Name) error {
		deps, ok := g[n]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownFeature, n)
		}
		switch state[n] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %v", ErrCycle, append(path, n))
		}
		state[n] = visiting
		for _, d := range deps {
			if err := visit(d, append(path, n)); err != nil {
				return err
			}
		}
		state[n] = done
		return nil
	}

	for _, n := range names {
		if err := visit(n, nil); err != nil {
			return nil, err
		}
	}

	out := make(Set, 0, len(state))
	for n := range state {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Leaves is Resolve restricted to leaf features.
func (g Graph) Leaves(names ...Name) (Set, error) {
	all, err := g.Resolve(names...)
	if err != nil {
		return nil, err
	}
	out := all[:0:0]
	for _, n := range all {
		if g.IsLeaf(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// Parse converts strings to names, checking each against g.
func (g Graph) Parse(raw ...string) ([]Name, error) {
	out := make([]Name, 0, len(raw))
	for _, r := range raw {
		n := Name(r)
		if _, ok := g[n]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, r)
		}
		out = append(out, n)
	}
	return out, nil
}
