package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sip-kpbj/api/internal/core/domain"
)

func TestEventService_Process_LoginTouchesLastLogin(t *testing.T) {
	users := newStubUserRepo()
	alice := seedUser(t, users, "a@x.com", domain.RoleUser)
	events := &stubEventRepo{}
	svc := NewEventService(events, users, zerolog.Nop())

	at := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	err := svc.Process(context.Background(), domain.AuthEvent{Type: domain.EventLogin, UserID: alice.ID, Timestamp: at})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if len(events.inserted) != 1 {
		t.Fatalf("expected 1 inserted event, got %d", len(events.inserted))
	}
	if got := users.touched[alice.ID]; !got.Equal(at) {
		t.Fatalf("expected last login %s, got %s", at, got)
	}
}

func TestEventService_Process_OtherEventsDoNotTouch(t *testing.T) {
	users := newStubUserRepo()
	alice := seedUser(t, users, "a@x.com", domain.RoleUser)
	events := &stubEventRepo{}
	svc := NewEventService(events, users, zerolog.Nop())

	for _, kind := range []domain.AuthEventType{domain.EventLoginFailed, domain.EventRefresh, domain.EventLogout} {
		if err := svc.Process(context.Background(), domain.AuthEvent{Type: kind, UserID: alice.ID}); err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
	}
	if len(users.touched) != 0 {
		t.Fatalf("expected no last-login updates, got %v", users.touched)
	}
}

func TestEventService_Process_MissingUserIsNotFatal(t *testing.T) {
	svc := NewEventService(&stubEventRepo{}, newStubUserRepo(), zerolog.Nop())

	if err := svc.Process(context.Background(), domain.AuthEvent{Type: domain.EventLogin, UserID: "gone"}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestEventService_Process_InsertError(t *testing.T) {
	svc := NewEventService(&stubEventRepo{insertErr: errStoreDown}, newStubUserRepo(), zerolog.Nop())

	err := svc.Process(context.Background(), domain.AuthEvent{Type: domain.EventLogout})
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
}
