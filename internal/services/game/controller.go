package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/dominotrain/internal/dependencies/clock"
	"github.com/mcoot/dominotrain/internal/dependencies/random"
	"github.com/mcoot/dominotrain/internal/model"
	"github.com/mcoot/dominotrain/internal/services/catalog"
	"github.com/mcoot/dominotrain/internal/services/ledger"
	"github.com/mcoot/dominotrain/internal/services/orchestrator"
	"github.com/mcoot/dominotrain/internal/services/reconcile"
	"github.com/mcoot/dominotrain/internal/storage"
)

// Controller owns every session mutation. Requests for one session are
// processed one at a time: load, run the transition, check, save, publish.
type Controller struct {
	storage      storage.Storage
	catalog      *catalog.Catalog
	ledger       *ledger.Service
	reconciler   *reconcile.Engine
	orchestrator *orchestrator.Service
	publisher    Publisher
	policy       PublicTrackPolicy
	defaults     model.SessionConfig
	clock        clock.Clock
	random       random.Random
	logger       *slog.Logger

	locks sync.Map // model.SessionID -> *sync.Mutex
}

// NewController creates a new Controller
func NewController(
	storage storage.Storage,
	cat *catalog.Catalog,
	ledgerService *ledger.Service,
	reconciler *reconcile.Engine,
	orchestratorService *orchestrator.Service,
	defaults model.SessionConfig,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:      storage,
		catalog:      cat,
		ledger:       ledgerService,
		reconciler:   reconciler,
		orchestrator: orchestratorService,
		publisher:    NopPublisher{},
		policy:       NeverPublic{},
		defaults:     defaults,
		clock:        clock,
		random:       random,
		logger:       logger,
	}
}

// SetPublisher sets where events are delivered
func (c *Controller) SetPublisher(p Publisher) {
	c.publisher = p
}

// SetPublicTrackPolicy replaces the policy that marks tracks public
func (c *Controller) SetPublicTrackPolicy(p PublicTrackPolicy) {
	c.policy = p
}

// CreateSession opens a new session in pregame with the host as its first player.
// Zero config fields take the controller defaults.
func (c *Controller) CreateSession(ctx context.Context, host model.PlayerID, cfg model.SessionConfig) (*model.Session, error) {
	if host == "" {
		return nil, model.ErrNotInSession
	}
	cfg = c.withDefaults(cfg)
	if cfg.RoundLimit < 1 || cfg.RoundLimit > model.RoundLimit || cfg.InitialHandSize < 0 {
		return nil, fmt.Errorf("%w: round limit %d, hand size %d", model.ErrInvalidSessionSetup, cfg.RoundLimit, cfg.InitialHandSize)
	}
	scoreboard, err := orchestrator.NewScoreboardWithSkippedRounds(cfg.SkipRounds, cfg.RoundLimit)
	if err != nil {
		return nil, err
	}
	if cfg.SkipRounds >= cfg.RoundLimit {
		return nil, fmt.Errorf("%w: skipping %d of %d rounds leaves nothing to play",
			model.ErrInvalidSessionSetup, cfg.SkipRounds, cfg.RoundLimit)
	}

	now := c.clock.Now()
	session := &model.Session{
		ID:                model.SessionID(c.random.NewID()),
		Host:              host,
		Phase:             model.PhasePregame,
		Config:            cfg,
		Players:           []model.PlayerID{host},
		Disconnected:      make(map[model.PlayerID]bool),
		Scoreboard:        scoreboard,
		Hands:             make(map[model.PlayerID]*model.Hand),
		TurnStations:      make(map[model.PlayerID]*model.Station),
		Flipped:           make(map[model.DominoID]bool),
		TurnStatuses:      make(model.TurnStatuses),
		Selected:          make(map[model.PlayerID]model.DominoID),
		GroupTurnDone:     make(model.ReadySet),
		ReadyForNextRound: make(model.ReadySet),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		c.logger.Error("failed to save session",
			slog.String("session_id", string(session.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(session.ID)),
		slog.String("host", string(host)),
		slog.Int("round_limit", cfg.RoundLimit),
		slog.Int("skip_rounds", cfg.SkipRounds),
	)
	return session, nil
}

func (c *Controller) withDefaults(cfg model.SessionConfig) model.SessionConfig {
	if cfg.RoundLimit == 0 {
		cfg.RoundLimit = orchestrator.RoundLimit(c.defaults.RoundLimit)
	}
	if cfg.InitialHandSize == 0 {
		cfg.InitialHandSize = c.defaults.InitialHandSize
	}
	if cfg.SkipRounds == 0 {
		cfg.SkipRounds = c.defaults.SkipRounds
	}
	return cfg
}

// GetSession retrieves a session by ID
func (c *Controller) GetSession(ctx context.Context, sessionID model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, sessionID)
}

// ListGameRecords returns the records of finished games
func (c *Controller) ListGameRecords(ctx context.Context) ([]*model.GameRecord, error) {
	return c.storage.ListGameRecords(ctx)
}

// GetGameRecord returns the record of one finished game
func (c *Controller) GetGameRecord(ctx context.Context, sessionID model.SessionID) (*model.GameRecord, error) {
	return c.storage.GetGameRecord(ctx, sessionID)
}

// CountSessions returns how many sessions are open
func (c *Controller) CountSessions(ctx context.Context) (int, error) {
	ids, err := c.storage.ListSessionIDs(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Join adds a player to a session in pregame
func (c *Controller) Join(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Session, error) {
	return c.Dispatch(ctx, sessionID, Command{Kind: CommandJoin, PlayerID: playerID})
}

// Start deals the first round. Host only.
func (c *Controller) Start(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Session, error) {
	return c.Dispatch(ctx, sessionID, Command{Kind: CommandStart, PlayerID: playerID})
}

// Draw takes the initial deal, or a single domino on later turns
func (c *Controller) Draw(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Session, error) {
	return c.Dispatch(ctx, sessionID, Command{Kind: CommandDraw, PlayerID: playerID})
}

// SelectDomino handles a click on any domino: hand, engine or track end
func (c *Controller) SelectDomino(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID, dominoID model.DominoID) (*model.Session, error) {
	return c.Dispatch(ctx, sessionID, Command{Kind: CommandSelect, PlayerID: playerID, DominoID: dominoID})
}

// EndTurn ends the group turn for the player, or their individual turn
func (c *Controller) EndTurn(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Session, error) {
	return c.Dispatch(ctx, sessionID, Command{Kind: CommandEndTurn, PlayerID: playerID})
}

// Undo takes back the player's last played domino
func (c *Controller) Undo(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID, dominoID model.DominoID) (*model.Session, error) {
	return c.Dispatch(ctx, sessionID, Command{Kind: CommandUndo, PlayerID: playerID, DominoID: dominoID})
}

// ReadyForNextRound signals the round over barrier
func (c *Controller) ReadyForNextRound(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Session, error) {
	return c.Dispatch(ctx, sessionID, Command{Kind: CommandReady, PlayerID: playerID})
}

// Disconnect removes a player from play
func (c *Controller) Disconnect(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Session, error) {
	return c.Dispatch(ctx, sessionID, Command{Kind: CommandDisconnect, PlayerID: playerID})
}

// Dispatch runs a command through the transition table. Rejected commands
// leave the stored session unchanged. An invariant violation aborts the
// command and resynchronizes the requester from the stored snapshot.
func (c *Controller) Dispatch(ctx context.Context, sessionID model.SessionID, cmd Command) (*model.Session, error) {
	unlock := c.lock(sessionID)
	defer unlock()

	session, err := c.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if cmd.Kind != CommandJoin && (!session.HasPlayer(cmd.PlayerID) || session.Disconnected[cmd.PlayerID]) {
		return nil, c.reject(session, cmd, model.ErrNotInSession)
	}

	handler, ok := transitions[transitionKey{phase: session.Phase, kind: cmd.Kind}]
	if !ok {
		if session.Phase == model.PhaseGameOver {
			return nil, c.reject(session, cmd, model.ErrGameComplete)
		}
		return nil, c.reject(session, cmd, model.ErrActionNotAllowed)
	}

	tx := &transition{ctx: ctx, session: session, cmd: cmd}
	fromPhase := session.Phase
	if err := handler(c, tx); err != nil {
		return nil, c.fail(ctx, session, cmd, err)
	}

	if session.Phase != model.PhasePregame {
		if err := c.ledger.CheckPartition(session); err != nil {
			return nil, c.fail(ctx, session, cmd, err)
		}
	}

	// Nobody is left to act, so the session is discarded
	closed := len(session.ConnectedPlayers()) == 0
	session.UpdatedAt = c.clock.Now()
	if closed {
		tx.emit(c, model.EventSessionClosed, model.SessionClosedPayload{Phase: session.Phase})
		if err := c.storage.DeleteSession(ctx, session.ID); err != nil {
			c.logger.Error("failed to delete session",
				slog.String("session_id", string(session.ID)),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		c.locks.Delete(sessionID)
		c.logger.Info("session closed",
			slog.String("session_id", string(session.ID)),
			slog.String("phase", string(session.Phase)),
		)
	} else if err := c.storage.SaveSession(ctx, session); err != nil {
		c.logger.Error("failed to save session",
			slog.String("session_id", string(session.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if fromPhase != session.Phase {
		c.logger.Info("phase changed",
			slog.String("session_id", string(session.ID)),
			slog.String("from", string(fromPhase)),
			slog.String("to", string(session.Phase)),
			slog.String("command", string(cmd.Kind)),
		)
	}

	if len(tx.events) > 0 {
		c.publisher.Publish(session.ID, tx.events)
	}
	return session, nil
}

// lock serializes requests for one session. A closed session's mutex is
// dropped while held; late waiters on it find the session gone.
func (c *Controller) lock(sessionID model.SessionID) func() {
	m, _ := c.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// reject logs a protocol violation and hands the error back unchanged
func (c *Controller) reject(session *model.Session, cmd Command, err error) error {
	c.logger.Warn("command rejected",
		slog.String("session_id", string(session.ID)),
		slog.String("phase", string(session.Phase)),
		slog.String("command", string(cmd.Kind)),
		slog.String("player_id", string(cmd.PlayerID)),
		slog.String("error", err.Error()),
	)
	return err
}

// fail classifies a transition error. Invariant violations are logged
// loudly and the requester is resynchronized from the stored snapshot.
func (c *Controller) fail(ctx context.Context, session *model.Session, cmd Command, err error) error {
	if !errors.Is(err, model.ErrInvariantViolation) {
		return c.reject(session, cmd, err)
	}

	c.logger.Error("invariant violated, command aborted",
		slog.String("session_id", string(session.ID)),
		slog.String("phase", string(session.Phase)),
		slog.String("command", string(cmd.Kind)),
		slog.String("player_id", string(cmd.PlayerID)),
		slog.String("error", err.Error()),
	)

	stored, loadErr := c.storage.GetSession(ctx, session.ID)
	if loadErr != nil {
		return err
	}
	c.publisher.Publish(stored.ID, c.resyncEvents(stored, cmd.PlayerID))
	return err
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateSession(ctx context.Context, host model.PlayerID, cfg model.SessionConfig) (*model.Session, error)
	GetSession(ctx context.Context, sessionID model.SessionID) (*model.Session, error)
	ListGameRecords(ctx context.Context) ([]*model.GameRecord, error)
	GetGameRecord(ctx context.Context, sessionID model.SessionID) (*model.GameRecord, error)
	CountSessions(ctx context.Context) (int, error)
	Join(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Session, error)
	Start(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Session, error)
	Draw(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Session, error)
	SelectDomino(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID, dominoID model.DominoID) (*model.Session, error)
	EndTurn(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Session, error)
	Undo(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID, dominoID model.DominoID) (*model.Session, error)
	ReadyForNextRound(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Session, error)
	Disconnect(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Session, error)
	Dispatch(ctx context.Context, sessionID model.SessionID, cmd Command) (*model.Session, error)
	PlayerStates(session *model.Session) map[model.PlayerID]model.PlayerState
	PlayerView(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*PlayerView, error)
}

var _ ControllerInterface = (*Controller)(nil)
