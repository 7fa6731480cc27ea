// Package saga contains processes that reconcile several records outside a
// single aggregate. Steps are best-effort: a failed step is reported to the
// caller, which logs it without undoing the triggering transition.
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alem-hub/internship-hub/internal/domain/internship"
	"github.com/alem-hub/internship-hub/internal/domain/schedule"
	"github.com/alem-hub/internship-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE SYNCHRONIZER
// Keeps the external schedule mirror loosely aligned with sessions.
// Flow (start):  find planned record → mark started | create from plan
// Flow (finish): close record linked to session → close stray planned records
// ══════════════════════════════════════════════════════════════════════════════

// DefaultSlotLength is the planned length of a record created on start.
const DefaultSlotLength = 8 * time.Hour

// ScheduleSynchronizer reconciles schedule records with session transitions.
type ScheduleSynchronizer struct {
	repo       schedule.Repository
	logger     *slog.Logger
	slotLength time.Duration
}

// NewScheduleSynchronizer creates a new ScheduleSynchronizer.
func NewScheduleSynchronizer(repo schedule.Repository, logger *slog.Logger) *ScheduleSynchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleSynchronizer{
		repo:       repo,
		logger:     logger.With("saga", "schedule_sync"),
		slotLength: DefaultSlotLength,
	}
}

// OnStart moves the candidate's planned record to "started" and links it to
// the session. Without a planned record a new one is created from the
// trainee's plan. Trainees without a candidate link are skipped.
func (s *ScheduleSynchronizer) OnStart(ctx context.Context, trainee *internship.Trainee, session *internship.Session) error {
	if trainee.CandidateID == nil {
		s.logger.Debug("trainee has no candidate link, skipping", "trainee_id", trainee.ID)
		return nil
	}
	candidateID := *trainee.CandidateID

	planned, err := s.repo.FindPlanned(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("schedule_sync: find planned: %w", err)
	}

	if rec := pickForDay(planned, session.StartedAt); rec != nil {
		rec.MarkStarted(trainee.ID, session.ID, session.TradePointID, session.StartedAt)
		if err := s.repo.Update(ctx, rec); err != nil {
			return fmt.Errorf("schedule_sync: mark started: %w", err)
		}
		s.logger.Info("schedule record started",
			"record_id", rec.ID,
			"candidate_id", candidateID,
			"session_id", session.ID,
		)
		return nil
	}

	slot := timeutil.SlotAt(session.StartedAt, s.slotLength)
	rec := schedule.Record{
		CandidateID:     candidateID,
		TradePointID:    trainee.PlannedTradePointID,
		MentorID:        trainee.MentorID,
		PlannedDate:     slot.Date,
		PlannedTimeFrom: slot.From,
		PlannedTimeTo:   slot.To,
		Status:          schedule.StatusPlanned,
	}
	rec.MarkStarted(trainee.ID, session.ID, session.TradePointID, session.StartedAt)

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return fmt.Errorf("schedule_sync: create record: %w", err)
	}
	s.logger.Info("schedule record created on start",
		"record_id", created.ID,
		"candidate_id", candidateID,
		"session_id", session.ID,
	)
	return nil
}

// OnFinish closes the record linked to the session, then closes any record of
// the candidate still "planned" on or before the session's day. All failures
// are collected and returned together.
func (s *ScheduleSynchronizer) OnFinish(ctx context.Context, trainee *internship.Trainee, session *internship.Session, at time.Time) error {
	if trainee.CandidateID == nil {
		s.logger.Debug("trainee has no candidate link, skipping", "trainee_id", trainee.ID)
		return nil
	}
	candidateID := *trainee.CandidateID

	var errs []error

	rec, err := s.repo.FindBySession(ctx, session.ID)
	switch {
	case errors.Is(err, schedule.ErrRecordNotFound):
		s.logger.Debug("no schedule record for session", "session_id", session.ID)
	case err != nil:
		errs = append(errs, fmt.Errorf("schedule_sync: find by session: %w", err))
	case rec.Status != schedule.StatusFinished:
		rec.MarkFinished(trainee.ID, session.ID, at)
		if err := s.repo.Update(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("schedule_sync: mark finished: %w", err))
		}
	}

	planned, err := s.repo.FindPlanned(ctx, candidateID)
	if err != nil {
		errs = append(errs, fmt.Errorf("schedule_sync: find stray planned: %w", err))
		return errors.Join(errs...)
	}

	lastDay := timeutil.FormatDateStr(session.StartedAt)
	for _, stray := range planned {
		if stray.PlannedDate.Format(timeutil.FormatDate) > lastDay {
			continue
		}
		stray.MarkFinished(trainee.ID, session.ID, at)
		if err := s.repo.Update(ctx, stray); err != nil {
			errs = append(errs, fmt.Errorf("schedule_sync: close stray record %d: %w", stray.ID, err))
			continue
		}
		s.logger.Info("stray planned record closed",
			"record_id", stray.ID,
			"candidate_id", candidateID,
			"session_id", session.ID,
		)
	}

	return errors.Join(errs...)
}

// pickForDay prefers a record planned for the session's local day, then the
// earliest planned one.
func pickForDay(planned []*schedule.Record, startedAt time.Time) *schedule.Record {
	if len(planned) == 0 {
		return nil
	}
	day := timeutil.FormatDateStr(startedAt)
	for _, rec := range planned {
		if rec.PlannedDate.Format(timeutil.FormatDate) == day {
			return rec
		}
	}
	return planned[0]
}
