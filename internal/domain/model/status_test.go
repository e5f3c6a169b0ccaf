package model

import (
	"errors"
	"strings"
	"testing"

	"media-production-workflow/internal/domain"
)

func TestValidateTransition_OrderClosure(t *testing.T) {
	t.Parallel()

	allowed := map[string]bool{}
	for from, tos := range orderTransitions {
		for _, to := range tos {
			allowed[string(from)+">"+string(to)] = true
		}
	}

	for _, from := range OrderStatuses() {
		for _, to := range OrderStatuses() {
			err := ValidateTransition(KindOrder, string(from), string(to))
			if allowed[string(from)+">"+string(to)] {
				if err != nil {
					t.Errorf("order %s -> %s: expected allowed, got %v", from, to, err)
				}
				continue
			}
			if err == nil {
				t.Errorf("order %s -> %s: expected rejection", from, to)
			} else if !errors.Is(err, domain.ErrInvalidTransition) {
				t.Errorf("order %s -> %s: wrong error %v", from, to, err)
			}
		}
	}
}

func TestValidateTransition_JobClosure(t *testing.T) {
	t.Parallel()

	allowed := map[string]bool{}
	for from, tos := range jobTransitions {
		for _, to := range tos {
			allowed[string(from)+">"+string(to)] = true
		}
	}

	for _, from := range JobStatuses() {
		for _, to := range JobStatuses() {
			err := ValidateTransition(KindJob, string(from), string(to))
			if allowed[string(from)+">"+string(to)] != (err == nil) {
				t.Errorf("job %s -> %s: allowed=%v err=%v", from, to, allowed[string(from)+">"+string(to)], err)
			}
		}
	}
}

func TestValidateTransition_TerminalStates(t *testing.T) {
	t.Parallel()

	for _, to := range OrderStatuses() {
		if err := ValidateTransition(KindOrder, string(OrderStatusCancelled), string(to)); err == nil {
			t.Errorf("cancelled order must be terminal, %s accepted", to)
		}
	}
	for _, to := range JobStatuses() {
		if err := ValidateTransition(KindJob, string(JobStatusCancelled), string(to)); err == nil {
			t.Errorf("cancelled job must be terminal, %s accepted", to)
		}
	}
}

func TestValidateTransition_UnknownKind(t *testing.T) {
	t.Parallel()

	err := ValidateTransition(EntityKind("invoice"), "a", "b")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestValidateTransition_ErrorNamesEdge(t *testing.T) {
	t.Parallel()

	err := ValidateTransition(KindOrder, string(OrderStatusPending), string(OrderStatusCompleted))
	if err == nil {
		t.Fatal("expected rejection")
	}
	msg := err.Error()
	for _, want := range []string{"pending", "completed"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q does not name edge part %q", msg, want)
		}
	}
}
