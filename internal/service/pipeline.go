package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ridewise/backend/internal/domain"
)

// ReminderGenerator produces the set of students who should be reminded for a
// target date.
type ReminderGenerator interface {
	GenerateReminders(ctx context.Context, targetDate time.Time) ([]domain.ReminderCandidate, domain.ReminderStats, error)
}

// ReminderDispatcher delivers one reminder candidate.
type ReminderDispatcher interface {
	DispatchReminder(ctx context.Context, c domain.ReminderCandidate) (DispatchResult, error)
}

// RunSummary aggregates one pipeline run for the trigger endpoint response
// and the run log line.
type RunSummary struct {
	TargetDate         string `json:"target_date"`
	SchedulesScanned   int    `json:"schedules_scanned"`
	StudentsScanned    int    `json:"students_scanned"`
	RemindersGenerated int    `json:"reminders_generated"`
	FallbackSuppressed int    `json:"fallback_suppressed"`
	Dispatched         int    `json:"dispatched"`
	Delivered          int    `json:"delivered"`
	Failed             int    `json:"failed"`
}

// Pipeline couples the reminder generator to the dispatcher: one run scans a
// target date, generates candidates, and dispatches each one. Per-candidate
// dispatch failures are counted and skipped so one broken student cannot
// starve the rest of the run.
type Pipeline struct {
	generator  ReminderGenerator
	dispatcher ReminderDispatcher
}

func NewPipeline(generator ReminderGenerator, dispatcher ReminderDispatcher) *Pipeline {
	return &Pipeline{generator: generator, dispatcher: dispatcher}
}

// Run executes one reminder pass for targetDate. A zero targetDate means
// tomorrow, the normal day-before cadence. The returned summary is valid even
// when err is non-nil only for context cancellation mid-run; a generation
// failure aborts before any dispatch.
func (p *Pipeline) Run(ctx context.Context, targetDate time.Time) (RunSummary, error) {
	if targetDate.IsZero() {
		targetDate = time.Now().UTC().AddDate(0, 0, 1)
	}
	targetDate = targetDate.Truncate(24 * time.Hour)

	summary := RunSummary{TargetDate: targetDate.Format("2006-01-02")}

	candidates, stats, err := p.generator.GenerateReminders(ctx, targetDate)
	if err != nil {
		return summary, fmt.Errorf("service.Pipeline.Run: %w", err)
	}
	summary.SchedulesScanned = stats.SchedulesScanned
	summary.StudentsScanned = stats.StudentsScanned
	summary.RemindersGenerated = stats.RemindersGenerated
	summary.FallbackSuppressed = stats.FallbackSuppressed

	for _, c := range candidates {
		if ctx.Err() != nil {
			return summary, fmt.Errorf("service.Pipeline.Run: %w", ctx.Err())
		}

		result, err := p.dispatcher.DispatchReminder(ctx, c)
		if err != nil {
			summary.Failed++
			slog.Error("reminder dispatch failed",
				"student_id", c.StudentID, "schedule_id", c.ScheduleID, "error", err)
			continue
		}
		summary.Dispatched++
		if result.Delivered {
			summary.Delivered++
		}
	}

	slog.Info("reminder pipeline run complete",
		"target_date", summary.TargetDate,
		"schedules_scanned", summary.SchedulesScanned,
		"students_scanned", summary.StudentsScanned,
		"reminders_generated", summary.RemindersGenerated,
		"dispatched", summary.Dispatched,
		"delivered", summary.Delivered,
		"failed", summary.Failed)

	return summary, nil
}
