package storage_test

import (
	"errors"
	"testing"

	"xdao.co/fingerprint/digest"
	"xdao.co/fingerprint/storage"
	"xdao.co/fingerprint/storage/localfs"
	"xdao.co/fingerprint/storage/testkit"
)

func newLocal(t *testing.T, alg string) *localfs.CAS {
	t.Helper()
	a, err := digest.Lookup(alg)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	cas, err := localfs.New(t.TempDir(), a)
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	return cas
}

func TestMultiCASConformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		return storage.MultiCAS{Adapters: []storage.CAS{newLocal(t, digest.Default), newLocal(t, digest.Default)}}
	})
}

func TestMultiCASFallsBack(t *testing.T) {
	first := newLocal(t, digest.Default)
	second := newLocal(t, digest.Default)
	id, err := second.Put([]byte("only in second"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	m := storage.MultiCAS{Adapters: []storage.CAS{first, second}}
	got, err := m.Get(id)
	if err != nil || string(got) != "only in second" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if !m.Has(id) || first.Has(id) {
		t.Fatalf("unexpected Has results")
	}
	if _, err := (storage.MultiCAS{}).Put([]byte("x")); !errors.Is(err, storage.ErrNoBackends) {
		t.Fatalf("expected ErrNoBackends, got %v", err)
	}
}

func TestReplicatingCASWritesAll(t *testing.T) {
	a := newLocal(t, "sha2-256")
	b := newLocal(t, "sha2-256")
	r, err := storage.NewReplicating(storage.NamedCAS{Name: "a", CAS: a}, storage.NamedCAS{Name: "b", CAS: b})
	if err != nil {
		t.Fatalf("NewReplicating: %v", err)
	}
	id, per, err := r.PutAll([]byte("replicated"))
	if err != nil {
		t.Fatalf("PutAll: %v", err)
	}
	if len(per) != 2 || !per["a"].Equals(id) || !per["b"].Equals(id) {
		t.Fatalf("per-backend CIDs = %v", per)
	}
	if !a.Has(id) || !b.Has(id) {
		t.Fatalf("expected block in both backends")
	}
	if r.Algorithm().Name != "sha2-256" {
		t.Fatalf("Algorithm = %s", r.Algorithm().Name)
	}
}

func TestReplicatingCASRejectsMixedAlgorithms(t *testing.T) {
	_, err := storage.NewReplicating(
		storage.NamedCAS{Name: "a", CAS: newLocal(t, "sha2-256")},
		storage.NamedCAS{Name: "b", CAS: newLocal(t, "blake3")},
	)
	if err == nil {
		t.Fatalf("expected algorithm mismatch error")
	}
	if _, err := storage.NewReplicating(); !errors.Is(err, storage.ErrNoBackends) {
		t.Fatalf("expected ErrNoBackends, got %v", err)
	}
}

func TestReplicatingCASConformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		r, err := storage.NewReplicating(
			storage.NamedCAS{Name: "a", CAS: newLocal(t, "blake3")},
			storage.NamedCAS{Name: "b", CAS: newLocal(t, "blake3")},
		)
		if err != nil {
			t.Fatalf("NewReplicating: %v", err)
		}
		return r
	})
}

type record struct {
	Name string
	Tags []string
}

func TestVerifyValueDetectsOtherEncoding(t *testing.T) {
	cas := newLocal(t, digest.Default)
	id, err := storage.PutValue(cas, record{Name: "a", Tags: []string{"x"}})
	if err != nil {
		t.Fatalf("PutValue: %v", err)
	}
	if err := storage.VerifyValue(cas, id, record{Name: "a", Tags: []string{"x"}}); err != nil {
		t.Fatalf("VerifyValue: %v", err)
	}
	if err := storage.VerifyValue(cas, id, record{Name: "b"}); !errors.Is(err, storage.ErrCIDMismatch) {
		t.Fatalf("expected ErrCIDMismatch, got %v", err)
	}
	ok, err := storage.HasValue(cas, record{Name: "a", Tags: []string{"x"}})
	if err != nil || !ok {
		t.Fatalf("HasValue = %v, %v", ok, err)
	}
}
