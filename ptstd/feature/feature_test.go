package feature

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolveFull(t *testing.T) {
	g := Manifest()
	for _, root := range []Name{Full, Default} {
		leaves, err := g.Leaves(root)
		if err != nil {
			t.Fatalf("Leaves(%s): %v", root, err)
		}
		want := []string{"chrono", "crypto", "linear", "log", "net", "ptr", "thread"}
		if !reflect.DeepEqual(leaves.Names(), want) {
			t.Fatalf("Leaves(%s) = %v, want %v", root, leaves.Names(), want)
		}
	}
}

func TestResolveNoNamesMeansDefault(t *testing.T) {
	g := Manifest()
	all, err := g.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, n := range []Name{Default, Full, Std, Extra, Net, Chrono} {
		if !all.Has(n) {
			t.Fatalf("default closure misses %s: %v", n, all)
		}
	}
	if len(all) != 11 {
		t.Fatalf("closure size = %d, want 11", len(all))
	}
}

func TestStdAndExtraAreDisjoint(t *testing.T) {
	g := Manifest()
	std, _ := g.Leaves(Std)
	extra, _ := g.Leaves(Extra)
	for _, n := range std {
		if extra.Has(n) {
			t.Fatalf("%s is in both std and extra", n)
		}
	}
	if !reflect.DeepEqual(std.Names(), []string{"net", "ptr", "thread"}) {
		t.Fatalf("std leaves = %v", std.Names())
	}
	if !reflect.DeepEqual(extra.Names(), []string{"chrono", "crypto", "linear", "log"}) {
		t.Fatalf("extra leaves = %v", extra.Names())
	}
}

func TestResolveDeduplicates(t *testing.T) {
	s, err := Manifest().Resolve(Net, Std, Net)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(s.Names(), []string{"net", "ptr", "std", "thread"}) {
		t.Fatalf("got %v", s.Names())
	}
}

func TestUnknownFeature(t *testing.T) {
	if _, err := Manifest().Resolve("gpu"); !errors.Is(err, ErrUnknownFeature) {
		t.Fatalf("expected ErrUnknownFeature, got %v", err)
	}
	if _, err := Manifest().Parse("net", "gpu"); !errors.Is(err, ErrUnknownFeature) {
		t.Fatalf("expected ErrUnknownFeature from Parse, got %v", err)
	}
}

func TestCycle(t *testing.T) {
	g := Graph{"a": {"b"}, "b": {"c"}, "c": {"a"}}
	if _, err := g.Resolve("a"); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestManifestIsACopy(t *testing.T) {
	g := Manifest()
	g[Std] = nil
	if len(Manifest()[Std]) != 3 {
		t.Fatal("Manifest shares state between calls")
	}
}

func TestIsLeaf(t *testing.T) {
	g := Manifest()
	for _, n := range []Name{Net, Ptr, Thread, Crypto, Linear, Log, Chrono} {
		if !g.IsLeaf(n) {
			t.Fatalf("%s should be a leaf", n)
		}
	}
	for _, n := range []Name{Default, Full, Std, Extra} {
		if g.IsLeaf(n) {
			t.Fatalf("%s should not be a leaf", n)
		}
	}
}
