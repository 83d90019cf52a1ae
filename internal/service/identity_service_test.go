package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	"go.uber.org/zap"
)

func TestResolve_BlankNationalIDNeverTouchesStore(t *testing.T) {
	repo := newFakeCitizens()
	svc := NewIdentityService(repo, time.Second, zap.NewNop())

	for _, nid := range []string{"", "   ", "\t"} {
		_, err := svc.Resolve(context.Background(), nid)
		var validErr *ValidationError
		if !errors.As(err, &validErr) {
			t.Fatalf("Resolve(%q): expected ValidationError, got %v", nid, err)
		}
	}
	if repo.callCount() != 0 {
		t.Errorf("store called %d times, want 0", repo.callCount())
	}
}

func TestResolve_NoRowsIsNotFound(t *testing.T) {
	svc := NewIdentityService(newFakeCitizens(), time.Second, zap.NewNop())

	_, err := svc.Resolve(context.Background(), "0000000000")
	if !errors.Is(err, citizen.ErrCitizenNotFound) {
		t.Fatalf("expected ErrCitizenNotFound, got %v", err)
	}
	var transientErr *TransientError
	if errors.As(err, &transientErr) {
		t.Error("not-found must not be reported as a transient error")
	}
}

func TestResolve_StoreFailureIsTransient(t *testing.T) {
	repo := newFakeCitizens()
	repo.err = errors.New("connection reset by peer")
	svc := NewIdentityService(repo, time.Second, zap.NewNop())

	_, err := svc.Resolve(context.Background(), "277-265-681-8")
	var transientErr *TransientError
	if !errors.As(err, &transientErr) {
		t.Fatalf("expected TransientError, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection reset by peer") {
		t.Errorf("message should carry the cause, got %q", err.Error())
	}
}

func TestResolve_TimeoutIsTransient(t *testing.T) {
	repo := newFakeCitizens()
	repo.gate = func(ctx context.Context, nid string) error {
		<-ctx.Done()
		return ctx.Err()
	}
	svc := NewIdentityService(repo, 20*time.Millisecond, zap.NewNop())

	_, err := svc.Resolve(context.Background(), "277-265-681-8")
	var transientErr *TransientError
	if !errors.As(err, &transientErr) {
		t.Fatalf("expected TransientError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "did not respond in time") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestResolve_DerivesAgeAndDistrict(t *testing.T) {
	repo := newFakeCitizens(&citizen.Citizen{
		NationalID:  "277-265-681-8",
		FullName:    "Sita Sharma",
		DateOfBirth: day(1990, 1, 1),
		Sex:         citizen.SexFemale,
		ContactInfo: citizen.ContactInfo{Address: "Ward No.3-Gaur Rautahat, Nepal"},
	})
	svc := NewIdentityService(repo, time.Second, zap.NewNop())
	svc.now = fixedClock(day(2025, 6, 1))

	id, err := svc.Resolve(context.Background(), "  277-265-681-8 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Age != 35 {
		t.Errorf("age = %d, want 35", id.Age)
	}
	if id.District != "Rautahat" {
		t.Errorf("district = %q, want Rautahat", id.District)
	}
}
