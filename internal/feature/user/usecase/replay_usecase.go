package usecase

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"course_backend/internal/platform/identity"
)

// maxReplayLine bounds a single exported event.
const maxReplayLine = 1 << 20

// EventApplier applies one lifecycle notification.
type EventApplier interface {
	HandleEvent(ctx context.Context, evt identity.Event) error
}

// Limiter throttles calls that write back to the identity provider.
type Limiter interface {
	Wait(ctx context.Context) error
}

// ReplayReport counts the outcome of a replay.
type ReplayReport struct {
	Applied int
	Skipped int
	Failed  int
}

// ReplayUsecase re-applies exported lifecycle notifications, one JSON event per line.
// It is used to catch up after webhook deliveries were lost. The input is
// trusted operator data and is not signature-checked.
type ReplayUsecase struct {
	events  EventApplier
	limiter Limiter
}

// NewReplayUsecase creates a ReplayUsecase. limiter may be nil.
func NewReplayUsecase(events EventApplier, limiter Limiter) *ReplayUsecase {
	return &ReplayUsecase{events: events, limiter: limiter}
}

// Replay applies every event read from r in order. A failing event is logged
// and counted, and the replay continues with the next one. Users that no
// longer exist or were redacted are counted as skipped.
func (u *ReplayUsecase) Replay(ctx context.Context, r io.Reader) (ReplayReport, error) {
	var rep ReplayReport

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxReplayLine)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var evt identity.Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			slog.Error("failed to decode event", "line", line, "error", err)
			rep.Failed++
			continue
		}

		if u.limiter != nil {
			if err := u.limiter.Wait(ctx); err != nil {
				return rep, err
			}
		}

		err := u.events.HandleEvent(ctx, evt)
		switch {
		case err == nil:
			rep.Applied++
		case errors.Is(err, ErrUserNotFound):
			slog.Info("skipping event for unknown user", "line", line, "type", evt.Type, "external_id", evt.Data.ID)
			rep.Skipped++
		default:
			if ctx.Err() != nil {
				return rep, ctx.Err()
			}
			slog.Error("failed to apply event", "line", line, "type", evt.Type, "external_id", evt.Data.ID, "error", err)
			rep.Failed++
		}
	}
	if err := sc.Err(); err != nil {
		return rep, fmt.Errorf("read events: %w", err)
	}
	return rep, nil
}
