// Package feed drains the notification queue into the inbox store and
// forwards high-priority entries to the mail sink when one is set.
package feed

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"eventdesk/internal/inbox"
	"eventdesk/internal/model"
	"eventdesk/internal/rabbit"
)

// Forwarder is the optional sink for high-priority notifications.
type Forwarder interface {
	Forward(n model.Notification) error
}

type Reader struct {
	rmq       *rabbit.Client
	store     *inbox.Store
	forwarder Forwarder
	done      chan struct{}
	cancel    context.CancelFunc
}

func NewReader(rmq *rabbit.Client, store *inbox.Store, forwarder Forwarder) *Reader {
	return &Reader{
		rmq:       rmq,
		store:     store,
		forwarder: forwarder,
		done:      make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("notification feed reader started")

	go func() {
		defer close(r.done)

		handler := func(body []byte) error {
			var n model.Notification
			if err := json.Unmarshal(body, &n); err != nil {
				zlog.Logger.Error().Err(err).Msgf("failed to unmarshal notification: %s", string(body))
				return err
			}

			r.store.Push(n)
			zlog.Logger.Info().
				Int64("notification_id", n.ID).
				Str("tipo", n.Tipo).
				Msg("notification delivered to inbox")

			if r.forwarder != nil && n.Prioridade == model.PriorityHigh {
				if err := r.forwarder.Forward(n); err != nil {
					zlog.Logger.Warn().Err(err).Msg("failed to forward high-priority notification")
				}
			}
			return nil
		}

		if err := r.rmq.Consume(handler); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to start consuming notifications")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("notification feed reader stopped by context")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
