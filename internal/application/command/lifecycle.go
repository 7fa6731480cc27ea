// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/outbox"
	"github.com/alem-hub/internship-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHARED DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// ScheduleSync reconciles the external schedule on session transitions.
type ScheduleSync interface {
	OnStart(ctx context.Context, trainee *internship.Trainee, session *internship.Session) error
	OnFinish(ctx context.Context, trainee *internship.Trainee, session *internship.Session, at time.Time) error
}

// Clock returns the current time.
type Clock func() time.Time

// LifecycleDeps are the collaborators shared by session lifecycle handlers.
// Schedule and Publisher are optional.
type LifecycleDeps struct {
	Internship  internship.Repository
	Schedule    ScheduleSync
	Publisher   outbox.Publisher
	Destination string
	Logger      *slog.Logger
	Now         Clock
}

func (d LifecycleDeps) withDefaults(handler string) LifecycleDeps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	d.Logger = d.Logger.With("handler", handler)
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// syncStart runs the schedule synchronizer; failures are only logged.
func (d LifecycleDeps) syncStart(ctx context.Context, trainee *internship.Trainee, session *internship.Session) {
	if d.Schedule == nil {
		return
	}
	if err := d.Schedule.OnStart(ctx, trainee, session); err != nil {
		d.Logger.Error("schedule sync on start failed",
			"trainee_id", trainee.ID,
			"session_id", session.ID,
			"error", err,
		)
	}
}

// syncFinish runs the schedule synchronizer; failures are only logged.
func (d LifecycleDeps) syncFinish(ctx context.Context, trainee *internship.Trainee, session *internship.Session, at time.Time) {
	if d.Schedule == nil {
		return
	}
	if err := d.Schedule.OnFinish(ctx, trainee, session, at); err != nil {
		d.Logger.Error("schedule sync on finish failed",
			"trainee_id", trainee.ID,
			"session_id", session.ID,
			"error", err,
		)
	}
}

// publish enqueues an outbox event; failures are only logged.
func (d LifecycleDeps) publish(ctx context.Context, eventType outbox.EventType, payload outbox.InternshipPayload) {
	if d.Publisher == nil {
		return
	}
	if err := d.Publisher.Publish(ctx, d.Destination, eventType, payload); err != nil {
		d.Logger.Error("outbox enqueue failed",
			"event_type", eventType,
			"trainee_id", payload.TraineeID,
			"session_id", payload.SessionID,
			"error", err,
		)
	}
}

// loadTrainee fetches the session's trainee for side effects. It returns nil
// when the trainee cannot be read, after logging.
func (d LifecycleDeps) loadTrainee(ctx context.Context, traineeID, sessionID int64) *internship.Trainee {
	trainee, err := d.Internship.GetTrainee(ctx, traineeID)
	if err != nil {
		d.Logger.Error("failed to load trainee for side effects",
			"trainee_id", traineeID,
			"session_id", sessionID,
			"error", err,
		)
		return nil
	}
	return trainee
}

func internshipPayload(trainee *internship.Trainee, session *internship.Session) outbox.InternshipPayload {
	p := outbox.InternshipPayload{
		TraineeID:    session.TraineeID,
		SessionID:    session.ID,
		DayNumber:    session.DayNumber,
		TradePointID: session.TradePointID,
		StartedBy:    session.StartedBy,
		WasLate:      session.WasLate,
		StartedAt:    session.StartedAt,
		FinishedAt:   session.FinishedAt,
	}
	if trainee != nil {
		p.CandidateID = trainee.CandidateID
	}
	return p
}

// ══════════════════════════════════════════════════════════════════════════════
// INPUT VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct tag validation and converts failures into a
// ErrValidation domain error listing every failed field.
func validateInput(domain, op string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return shared.WrapError(domain, op, shared.ErrValidation, "invalid input", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			fields = append(fields, fmt.Sprintf("%s (%s=%s)", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
	}
	return shared.NewDomainError(domain, op, shared.ErrValidation, "invalid fields: "+strings.Join(fields, ", "))
}
