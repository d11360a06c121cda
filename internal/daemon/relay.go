package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ManuGH/eventd/internal/domain/event/model"
	"github.com/ManuGH/eventd/internal/domain/event/ports"
	"github.com/ManuGH/eventd/internal/log"
)

// relay drains the outward notification topics into the log. It stands in
// for the game server's own consumers when the daemon runs on its own.
type relay struct {
	bus    ports.Bus
	logger zerolog.Logger
}

func newRelay(bus ports.Bus, logger zerolog.Logger) *relay {
	return &relay{bus: bus, logger: logger.With().Str(log.FieldComponent, "relay").Logger()}
}

func (r *relay) run(ctx context.Context) error {
	topics := []string{model.TopicPhase, model.TopicWave, model.TopicMembership}
	subs := make([]ports.Subscription, 0, len(topics))
	defer func() {
		for _, s := range subs {
			_ = s.Close()
		}
	}()
	for _, t := range topics {
		s, err := r.bus.Subscribe(ctx, t)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}
		subs = append(subs, s)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-subs[0].C():
			if !r.handle(ev, ok) {
				return nil
			}
		case ev, ok := <-subs[1].C():
			if !r.handle(ev, ok) {
				return nil
			}
		case ev, ok := <-subs[2].C():
			if !r.handle(ev, ok) {
				return nil
			}
		}
	}
}

var errUnknownNotification = errors.New("unknown notification")

func (r *relay) handle(ev any, ok bool) bool {
	if !ok {
		return false
	}
	switch e := ev.(type) {
	case model.PhaseChanged:
		r.logger.Debug().
			Str(log.FieldInstanceID, e.InstanceID).
			Str(log.FieldEventKey, e.Key.String()).
			Str(log.FieldOldPhase, e.From.String()).
			Str(log.FieldNewPhase, e.To.String()).
			Str(log.FieldReason, string(e.Reason)).
			Msg("phase notification")
	case model.WaveChanged:
		r.logger.Debug().
			Str(log.FieldInstanceID, e.InstanceID).
			Int(log.FieldWave, e.Wave).
			Bool("active", e.Active).
			Msg("wave notification")
	case model.MembershipChanged:
		r.logger.Debug().
			Str(log.FieldInstanceID, e.InstanceID).
			Str(log.FieldPlayer, string(e.Player)).
			Bool("joined", e.Joined).
			Msg("membership notification")
	default:
		r.logger.Warn().Err(errUnknownNotification).Str("type", fmt.Sprintf("%T", ev)).Msg("dropping notification")
	}
	return true
}
