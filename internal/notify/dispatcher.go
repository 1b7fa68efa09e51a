package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrSkipped is returned by a Sender when an intent does not apply to it
// (wrong kind, disabled provider, no devices). It is counted, not logged.
var ErrSkipped = errors.New("notify: skipped")

// Sender delivers one intent through one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, in Intent) error
}

// Options configures a Dispatcher.
type Options struct {
	// Buffer is the intake capacity; Publish drops events beyond it.
	Buffer int
	// Workers is the number of concurrent handlers.
	Workers int
	// HandleTimeout bounds the handling of one event across all senders.
	HandleTimeout time.Duration
	Logger        *zerolog.Logger
}

// Dispatcher accepts events without blocking the caller and delivers them in
// the background.
type Dispatcher struct {
	queue    Queue
	profiles ProfileLookup
	senders  []Sender
	opts     Options
	log      zerolog.Logger

	mu     sync.RWMutex
	closed bool
	intake chan Event

	cancel  context.CancelFunc
	pumpWG  sync.WaitGroup
	workWG  sync.WaitGroup
	started bool
}

// NewDispatcher wires a dispatcher. Call Start to begin delivery.
func NewDispatcher(q Queue, profiles ProfileLookup, opts Options, senders ...Sender) *Dispatcher {
	if opts.Buffer <= 0 {
		opts.Buffer = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.HandleTimeout <= 0 {
		opts.HandleTimeout = 2 * time.Minute
	}
	lg := log.Logger
	if opts.Logger != nil {
		lg = *opts.Logger
	}
	return &Dispatcher{
		queue:    q,
		profiles: profiles,
		senders:  senders,
		opts:     opts,
		log:      lg.With().Str("component", "notify").Logger(),
		intake:   make(chan Event, opts.Buffer),
	}
}

// Start launches the pump and the workers.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	d.pumpWG.Add(1)
	go d.pump(ctx)

	for i := 0; i < d.opts.Workers; i++ {
		d.workWG.Add(1)
		go d.work(ctx, i)
	}
}

// Publish hands ev to the dispatcher and returns immediately. When the
// intake is full or the dispatcher is closed, the event is dropped.
func (d *Dispatcher) Publish(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		eventsTotal.WithLabelValues(string(ev.Kind), "dropped").Inc()
		return
	}
	select {
	case d.intake <- ev:
	default:
		eventsTotal.WithLabelValues(string(ev.Kind), "dropped").Inc()
		d.log.Warn().
			Str("event", string(ev.Kind)).
			Str("match_id", ev.MatchID).
			Str("user_id", ev.Recipient).
			Msg("notification intake full; event dropped")
	}
}

// pump moves events from the intake to the queue until the intake closes.
func (d *Dispatcher) pump(ctx context.Context) {
	defer d.pumpWG.Done()
	for ev := range d.intake {
		if err := d.queue.Enqueue(ctx, ev); err != nil {
			eventsTotal.WithLabelValues(string(ev.Kind), "dropped").Inc()
			d.log.Error().Err(err).Str("event", string(ev.Kind)).Msg("enqueue failed")
			continue
		}
		eventsTotal.WithLabelValues(string(ev.Kind), "queued").Inc()
	}
}

func (d *Dispatcher) work(ctx context.Context, id int) {
	defer d.workWG.Done()
	for {
		ev, err := d.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || ctx.Err() != nil {
				return
			}
			d.log.Error().Err(err).Int("worker", id).Msg("dequeue failed")
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		d.Handle(ctx, ev)
	}
}

// Handle resolves the parties of ev and runs every sender for every intent.
// Failures are logged and counted.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.HandleTimeout)
	defer cancel()

	lg := d.log.With().
		Str("event", string(ev.Kind)).
		Str("match_id", ev.MatchID).
		Logger()

	profiles, err := d.profiles.Profiles(ctx, ev.Actor, ev.Recipient)
	if err != nil {
		eventsTotal.WithLabelValues(string(ev.Kind), "failed").Inc()
		lg.Error().Err(err).Msg("profile lookup failed")
		return
	}
	list := intents(ev, profiles)
	if len(list) == 0 {
		eventsTotal.WithLabelValues(string(ev.Kind), "failed").Inc()
		lg.Warn().Str("actor", ev.Actor).Str("recipient", ev.Recipient).Msg("notification parties not found")
		return
	}

	for _, in := range list {
		for _, s := range d.senders {
			err := s.Send(ctx, in)
			switch {
			case err == nil:
				deliveriesTotal.WithLabelValues(s.Name(), string(in.Kind), "sent").Inc()
			case errors.Is(err, ErrSkipped):
				deliveriesTotal.WithLabelValues(s.Name(), string(in.Kind), "skipped").Inc()
			default:
				deliveriesTotal.WithLabelValues(s.Name(), string(in.Kind), "failed").Inc()
				lg.Error().Err(err).
					Str("sender", s.Name()).
					Str("user_id", in.Recipient.ID).
					Msg("notification delivery failed")
			}
		}
	}
	eventsTotal.WithLabelValues(string(ev.Kind), "handled").Inc()
}

// Close stops intake, lets the workers drain what is queued and waits for
// them until ctx is done. Events left on a Redis queue stay there.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.intake)
	started := d.started
	d.mu.Unlock()

	if !started {
		return d.queue.Close()
	}

	d.pumpWG.Wait()
	_ = d.queue.Close()

	done := make(chan struct{})
	go func() {
		d.workWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
