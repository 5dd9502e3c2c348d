package client

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"gochat/internal/model"
)

type State int

const (
	Idle State = iota
	Polling
)

func (s State) String() string {
	if s == Polling {
		return "polling"
	}
	return "idle"
}

const DefaultInterval = 5 * time.Second

// Fetcher is the slice of Client the poller needs.
type Fetcher interface {
	Messages(ctx context.Context, chatID string, since *time.Time) ([]model.Message, error)
}

// Poller keeps the session's active chat fresh by periodic delta fetches.
// At most one polling task exists; its ticks run on a single goroutine so
// fetches never overlap.
type Poller struct {
	fetch      Fetcher
	session    *Session
	interval   time.Duration
	log        *zap.Logger
	onMessages func(chatID string, msgs []model.Message)

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller builds an idle poller. onMessages runs on the polling goroutine
// and must not call Start or Stop synchronously.
func NewPoller(fetch Fetcher, session *Session, interval time.Duration, log *zap.Logger, onMessages func(chatID string, msgs []model.Message)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetch:      fetch,
		session:    session,
		interval:   interval,
		log:        log,
		onMessages: onMessages,
	}
}

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start opens chatID and polls it, replacing any running task. It returns
// once the replaced task has exited.
func (p *Poller) Start(chatID string) {
	p.mu.Lock()
	prevCancel, prevDone := p.cancel, p.done

	p.session.OpenChat(chatID)
	ctx, cancel := context.WithCancel(context.Background())
	p.gen++
	p.cancel = cancel
	p.done = make(chan struct{})
	p.state = Polling
	go p.loop(ctx, p.gen, chatID, p.done)
	p.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}
}

// Stop cancels the task and waits for it; no callback fires after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.gen++
	p.state = Idle
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (p *Poller) loop(ctx context.Context, gen uint64, chatID string, done chan struct{}) {
	defer close(done)

	p.poll(ctx, gen, chatID)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, gen, chatID)
		}
	}
}

func (p *Poller) poll(ctx context.Context, gen uint64, chatID string) {
	msgs, err := p.fetch.Messages(ctx, chatID, p.session.Since(chatID))
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.log.Warn("poll failed", zap.String("chat_id", chatID), zap.Error(err))
		return
	}

	p.mu.Lock()
	current := p.gen == gen
	p.mu.Unlock()
	if !current {
		return
	}

	fresh := p.session.Apply(chatID, msgs)
	if len(fresh) > 0 && p.onMessages != nil {
		p.onMessages(chatID, fresh)
	}
}
