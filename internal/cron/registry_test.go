package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	first := &stubJob{name: "first"}
	second := &stubJob{name: "second"}
	registry := NewRegistry(first)
	registry.Register(second)
	registry.Register(nil)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != first || jobs[1] != second {
		t.Fatalf("jobs returned out of order")
	}
}

func TestRegistryJobsReturnsCopy(t *testing.T) {
	registry := NewRegistry(&stubJob{name: "only"})
	jobs := registry.Jobs()
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
}
