package client

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/runeboard/runeboard-client/internal/game"
	"github.com/runeboard/runeboard-client/internal/game/interaction"
)

// ErrSessionClosed is returned by Do once the event loop has stopped.
var ErrSessionClosed = errors.New("session closed")

// Link is the connection a session runs over; *transport.Conn implements it.
type Link interface {
	interaction.Sender
	Frames() <-chan []byte
	Run(ctx context.Context) error
	Close() error
}

// Action is a player gesture executed on the event loop.
type Action func(ctx context.Context, c *Controller) error

type command struct {
	action Action
	result chan error
}

// Session wires one match: the link, the mirrored store, the reconciler and
// the controller. Inbound frames, settle timers and player actions are all
// handled on a single event loop, so the store has a single writer.
type Session struct {
	ID string

	link       Link
	store      *game.Store
	dispatcher *interaction.Dispatcher
	reconciler *game.Reconciler
	controller *Controller
	journal    *game.Journal

	archiver   game.Archiver
	journalDir string
	logger     *zap.Logger

	commands chan command
	done     chan struct{}
}

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	settleDelay time.Duration
	notifier    game.Notifier
	confirmer   Confirmer
	archiver    game.Archiver
	journalDir  string
	logger      *zap.Logger
}

// WithSettleDelay sets the pause before an authoritative move result lands.
func WithSettleDelay(d time.Duration) SessionOption {
	return func(c *sessionConfig) { c.settleDelay = d }
}

// WithNotifier sets the receiver of player notices.
func WithNotifier(n game.Notifier) SessionOption {
	return func(c *sessionConfig) { c.notifier = n }
}

// WithConfirmer sets the confirmation prompt for paid and direct actions.
func WithConfirmer(cf Confirmer) SessionOption {
	return func(c *sessionConfig) { c.confirmer = cf }
}

// WithArchiver archives the journal when the session ends.
func WithArchiver(a game.Archiver) SessionOption {
	return func(c *sessionConfig) { c.archiver = a }
}

// WithJournalDir saves the journal to dir when the session ends.
func WithJournalDir(dir string) SessionOption {
	return func(c *sessionConfig) { c.journalDir = dir }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) SessionOption {
	return func(c *sessionConfig) { c.logger = l }
}

// NewSession creates a session for username in room over link.
func NewSession(link Link, username, room string, opts ...SessionOption) *Session {
	cfg := sessionConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.notifier == nil {
		cfg.notifier = game.LogNotifier{Logger: cfg.logger}
	}

	id := uuid.NewString()
	logger := cfg.logger.With(zap.String("session_id", id), zap.String("room", room))

	machine := interaction.NewMachine(logger)
	store := game.NewStore(game.NewState(username), machine)
	dispatcher := interaction.NewDispatcher(machine, link, logger)
	journal := game.NewJournal(id, room, username)

	return &Session{
		ID:         id,
		link:       link,
		store:      store,
		dispatcher: dispatcher,
		journal:    journal,
		reconciler: game.NewReconciler(store, logger,
			game.WithSettleDelay(cfg.settleDelay),
			game.WithNotifier(cfg.notifier),
			game.WithDispatcher(dispatcher),
			game.WithJournal(journal),
		),
		controller: NewController(store, dispatcher, link, cfg.notifier, cfg.confirmer, logger),
		archiver:   cfg.archiver,
		journalDir: cfg.journalDir,
		logger:     logger,
		commands:   make(chan command),
		done:       make(chan struct{}),
	}
}

// Store returns the session's store. Its readers are safe to call from any
// goroutine.
func (s *Session) Store() *game.Store { return s.store }

// Controller returns the session's controller. Its read-only helpers may be
// called from any goroutine; gestures go through Do.
func (s *Session) Controller() *Controller { return s.controller }

// Journal returns the journal of applied frames.
func (s *Session) Journal() *game.Journal { return s.journal }

// Run drives the session until ctx is cancelled or the link ends. On return
// pending frames are applied, the interaction is reset to Idle and the
// journal is saved and archived when configured.
func (s *Session) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.link.Run(gctx) })
	g.Go(func() error {
		defer close(s.done)
		return s.loop(gctx)
	})
	err := g.Wait()
	s.finish()
	return err
}

// Do runs action on the event loop and returns its result.
func (s *Session) Do(ctx context.Context, action Action) error {
	cmd := command{action: action, result: make(chan error, 1)}
	select {
	case s.commands <- cmd:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the link, which ends Run.
func (s *Session) Close() error {
	return s.link.Close()
}

func (s *Session) loop(ctx context.Context) error {
	frames := s.link.Frames()
	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-frames:
			if !ok {
				return nil
			}
			if err := s.reconciler.HandleFrame(raw); err != nil {
				s.logger.Warn("dropping malformed frame", zap.Error(err), zap.Int("bytes", len(raw)))
			}
		case <-s.reconciler.SettleC():
			s.reconciler.Settle()
		case cmd := <-s.commands:
			cmd.result <- cmd.action(ctx, s.controller)
		}
	}
}

func (s *Session) finish() {
	s.reconciler.Reset()
	s.logger.Info("session ended",
		zap.Int("frames", s.journal.Size()),
		zap.Uint64("step_seq", s.dispatcher.Seq()),
	)

	if s.journalDir != "" {
		path, err := s.journal.SaveToFile(s.journalDir)
		if err != nil {
			s.logger.Error("failed to save journal", zap.Error(err))
		} else {
			s.logger.Info("journal saved", zap.String("path", path))
		}
	}
	if s.archiver != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.archiver.Archive(ctx, s.journal); err != nil {
			s.logger.Error("failed to archive journal", zap.Error(err))
		}
	}
}
