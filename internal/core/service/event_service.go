package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sip-kpbj/api/internal/core/domain"
	"github.com/sip-kpbj/api/internal/core/ports"
)

type eventService struct {
	eventRepo ports.EventRepository
	users     ports.UserRepository
	log       zerolog.Logger
}

// NewEventService returns the audit trail writer run by the dispatcher workers.
func NewEventService(eventRepo ports.EventRepository, users ports.UserRepository, log zerolog.Logger) ports.EventService {
	return &eventService{
		eventRepo: eventRepo,
		users:     users,
		log:       log,
	}
}

// Process persists one audit event. For successful logins the identity's
// last_login_at is bumped as well; failing that is not fatal.
func (s *eventService) Process(ctx context.Context, ev domain.AuthEvent) error {
	if err := s.eventRepo.InsertEvent(ctx, &ev); err != nil {
		return fmt.Errorf("process auth event: %w", err)
	}

	if ev.Type == domain.EventLogin && ev.UserID != "" {
		if err := s.users.TouchLastLogin(ctx, ev.UserID, ev.Timestamp); err != nil {
			s.log.Warn().Err(err).Str("user_id", ev.UserID).Msg("failed to update last login")
		}
	}

	s.log.Debug().
		Str("type", string(ev.Type)).
		Str("user_id", ev.UserID).
		Str("ip", ev.IP).
		Msg("auth event recorded")

	return nil
}
