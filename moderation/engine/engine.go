// Package engine wires the detectors, the violation ledger, and the action
// resolver into the moderation pipeline
//
//	Detected -> Recorded -> Resolved -> Dispatched
//
// Detection runs synchronously on the caller's goroutine and never touches
// storage. Confirmed violations are handed to a single background worker
// which records them, queries the active count, resolves threshold rules,
// and hands the resulting commands to the host's serialized dispatcher.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gamemod/warden/moderation/action"
	"github.com/gamemod/warden/moderation/config"
	"github.com/gamemod/warden/moderation/detector"
	"github.com/gamemod/warden/moderation/ledger"
	"github.com/gamemod/warden/moderation/pattern"
	"github.com/gamemod/warden/moderation/session"
)

// Surface identifies where a piece of player text came from.
type Surface string

const (
	SurfaceChat     Surface = "chat"
	SurfaceCommand  Surface = "command"
	SurfaceBook     Surface = "book"
	SurfaceSign     Surface = "sign"
	SurfaceAnvil    Surface = "anvil"
	SurfaceItemName Surface = "item-name"
)

// Dispatcher executes a resolved command string, with {player} already
// substituted, on the host's single control thread. The engine only
// requests execution and never runs commands itself.
type Dispatcher interface {
	Dispatch(command string)
}

// ExemptFunc checks whether a player holds the bypass capability for a
// category. It is the host's permission lookup.
type ExemptFunc func(playerID string, category detector.Category) bool

// Config carries the engine's collaborators.
type Config struct {
	Logger     *slog.Logger
	Policy     config.Policy
	Ledger     *ledger.Ledger
	Dispatcher Dispatcher
	Exempt     ExemptFunc
	// QueueSize bounds the async violation queue; 0 selects the default.
	QueueSize int
}

const defaultQueueSize = 256

// detectorSet is the policy-derived state swapped atomically on reload.
type detectorSet struct {
	spam            *detector.SpamDetector
	ads             *detector.AdvertisementDetector
	caps            *detector.CapsDetector
	swear           *detector.SwearDetector
	blockedCommands *pattern.CommandSet
	rules           map[detector.Category][]action.Rule
	exemptNodes     map[detector.Category]string
	mentionCooldown time.Duration
}

// Engine is the moderation engine. Construct with New and pass explicitly
// to the text-surface collaborators; lifecycle is tied to Start/Shutdown.
type Engine struct {
	logger     *slog.Logger
	ledger     *ledger.Ledger
	dispatcher Dispatcher
	exempt     ExemptFunc
	sessions   *session.Registry

	mu  sync.RWMutex
	set *detectorSet

	events  chan violationEvent
	drained chan struct{}
	// closeMu guards closed, which flips once when Shutdown closes the
	// event channel. Offload holds the read side for the send so no
	// detection path can race the close.
	closeMu sync.RWMutex
	closed  bool
}

// New builds an engine from a policy snapshot and starts the background
// worker. Policy problems (invalid classes, malformed rules) are logged and
// the offending entries skipped; only an unbuildable banned-word matcher is
// fatal.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exempt := cfg.Exempt
	if exempt == nil {
		exempt = func(string, detector.Category) bool { return false }
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	set, err := buildDetectorSet(cfg.Policy, logger)
	if err != nil {
		return nil, err
	}

	eng := &Engine{
		logger:     logger,
		ledger:     cfg.Ledger,
		dispatcher: cfg.Dispatcher,
		exempt:     exempt,
		sessions:   session.NewRegistry(),
		set:        set,
		events:     make(chan violationEvent, queueSize),
		drained:    make(chan struct{}),
	}
	go eng.run()
	return eng, nil
}

func buildDetectorSet(pol config.Policy, logger *slog.Logger) (*detectorSet, error) {
	for _, problem := range pol.Validate() {
		logger.Warn("skipping invalid policy entry", "err", problem)
	}

	banned, err := pattern.CompileBannedWords(pol.Swear.BannedWords, pol.CharClassMap())
	if err != nil {
		return nil, fmt.Errorf("building banned-word matcher: %w", err)
	}
	swearMatcher := pattern.NewMatcher(banned, pattern.CompileLiteralSet(pol.Swear.Whitelist))

	ads, err := detector.NewAdvertisementDetector(
		pol.Advertisement.Pattern,
		pattern.CompileLiteralSet(pol.Advertisement.DomainWhitelist),
	)
	if err != nil {
		// Validate already scrubbed unparseable custom patterns, so this
		// only trips if the built-in default regresses
		return nil, fmt.Errorf("building advertisement detector: %w", err)
	}

	spam := detector.NewSpamDetector(detector.SpamConfig{
		ChatDelay:            time.Duration(pol.Spam.ChatDelaySeconds * float64(time.Second)),
		MaxChatDuplicates:    pol.Spam.MaxChatDuplicates,
		CommandDelay:         time.Duration(pol.Spam.CommandDelaySeconds * float64(time.Second)),
		MaxCommandDuplicates: pol.Spam.MaxCommandDuplicates,
		SimilarityThreshold:  pol.Spam.SimilarityThreshold,
		CommandWhitelist:     pattern.CompileCommandSet(pol.Spam.CommandWhitelist),
	})

	return &detectorSet{
		spam:            spam,
		ads:             ads,
		caps:            &detector.CapsDetector{MinLength: pol.Caps.MinLength, Ratio: pol.Caps.Ratio},
		swear:           detector.NewSwearDetector(swearMatcher),
		blockedCommands: pattern.CompileCommandSet(pol.BlockedCommands),
		rules:           pol.RuleSets(),
		exemptNodes:     pol.ExemptPermissionNodes(),
		mentionCooldown: time.Duration(pol.MentionCooldownSeconds * float64(time.Second)),
	}, nil
}

// Reload rebuilds matchers, detectors, and rule sets from a fresh policy
// snapshot without a restart. Session state and in-flight events survive.
func (e *Engine) Reload(pol config.Policy) error {
	set, err := buildDetectorSet(pol, e.logger)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.set = set
	e.mu.Unlock()
	e.logger.Info("moderation policy reloaded",
		"bannedWords", len(pol.Swear.BannedWords),
		"ruleCategories", len(pol.Rules))
	return nil
}

func (e *Engine) detectors() *detectorSet {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.set
}

func (e *Engine) isExempt(playerID string, cat detector.Category) bool {
	return e.exempt(playerID, cat)
}

// ExemptPermissions returns the permission node that bypasses each
// category's detector, from the current policy snapshot. Hosts build their
// ExemptFunc from this map.
func (e *Engine) ExemptPermissions() map[detector.Category]string {
	nodes := e.detectors().exemptNodes
	out := make(map[detector.Category]string, len(nodes))
	for cat, node := range nodes {
		out[cat] = node
	}
	return out
}

// ProcessChat runs one chat line through every chat detector. The verdict
// is returned synchronously so the host can cancel the message; on a block
// the violation is recorded asynchronously. A failure inside the engine
// fails open: the message is allowed.
func (e *Engine) ProcessChat(ctx context.Context, playerID, playerName, message string) (verdict detector.Verdict) {
	defer e.recoverDetection(&verdict, playerID, SurfaceChat)
	start := time.Now()
	defer func() { observe(SurfaceChat, start) }()
	messageProcessedCount.WithLabelValues(string(SurfaceChat)).Inc()

	ds := e.detectors()
	st := e.sessions.Get(playerID)

	verdict = ds.spam.CheckChat(st, message, e.isExempt(playerID, detector.CategorySpam))
	if !verdict.Blocked {
		verdict = ds.ads.Check(message, e.isExempt(playerID, detector.CategoryAdvertisement))
	}
	if !verdict.Blocked {
		verdict = ds.caps.Check(message, e.isExempt(playerID, detector.CategoryCaps))
	}
	if !verdict.Blocked {
		verdict = ds.swear.Check(message, e.isExempt(playerID, detector.CategorySwear))
	}
	if verdict.Blocked {
		e.offload(SurfaceChat, playerID, playerName, verdict)
	}
	return verdict
}

// ProcessCommand runs one command through the blocked-command list, the
// command spam checks, and the banned-word matcher. Blocked commands are
// refused without recording a violation.
func (e *Engine) ProcessCommand(ctx context.Context, playerID, playerName, command string) (verdict detector.Verdict) {
	defer e.recoverDetection(&verdict, playerID, SurfaceCommand)
	start := time.Now()
	defer func() { observe(SurfaceCommand, start) }()
	messageProcessedCount.WithLabelValues(string(SurfaceCommand)).Inc()

	ds := e.detectors()

	if ds.blockedCommands.MatchesPrefix(command) {
		verdict = detector.Verdict{Blocked: true, Reason: detector.ReasonBlockedCommand, Details: command}
		messageBlockedCount.WithLabelValues(string(SurfaceCommand), "blocked-command").Inc()
		return verdict
	}

	st := e.sessions.Get(playerID)
	verdict = ds.spam.CheckCommand(st, command, e.isExempt(playerID, detector.CategorySpam))
	if !verdict.Blocked {
		verdict = ds.swear.Check(command, e.isExempt(playerID, detector.CategorySwear))
	}
	if verdict.Blocked {
		e.offload(SurfaceCommand, playerID, playerName, verdict)
	}
	return verdict
}

// CheckText applies the banned-word contract to a non-chat text surface:
// book titles and pages, sign lines, anvil renames, item display names.
func (e *Engine) CheckText(ctx context.Context, playerID, playerName string, surface Surface, text string) (verdict detector.Verdict) {
	defer e.recoverDetection(&verdict, playerID, surface)
	start := time.Now()
	defer func() { observe(surface, start) }()
	messageProcessedCount.WithLabelValues(string(surface)).Inc()

	verdict = e.detectors().swear.Check(text, e.isExempt(playerID, detector.CategorySwear))
	if verdict.Blocked {
		e.offload(surface, playerID, playerName, verdict)
	}
	return verdict
}

// MentionAllowed reports whether playerID may trigger a mention ping of
// target, starting the cooldown when it is. Mentions of ignored players are
// suppressed without consuming the cooldown.
func (e *Engine) MentionAllowed(ctx context.Context, playerID, target string) bool {
	ignoring, err := e.ledger.IsIgnoring(ctx, target, playerID)
	if err != nil {
		e.logger.Warn("ignore lookup failed", "player", playerID, "err", err)
	}
	if ignoring {
		return false
	}
	st := e.sessions.Get(playerID)
	now := time.Now()
	if !st.MentionReady(now) {
		return false
	}
	st.RecordMention(target, now.Add(e.detectors().mentionCooldown))
	return true
}

// RemoveViolation pardons a recorded violation.
func (e *Engine) RemoveViolation(ctx context.Context, violationID, playerID string) error {
	return e.ledger.Remove(ctx, violationID, playerID)
}

// Disconnect drops the player's session state.
func (e *Engine) Disconnect(playerID string) {
	e.sessions.Remove(playerID)
}

func (e *Engine) recoverDetection(verdict *detector.Verdict, playerID string, surface Surface) {
	if r := recover(); r != nil {
		detectionPanicCount.Inc()
		e.logger.Error("detection path exception, failing open",
			"err", r, "player", playerID, "surface", surface)
		*verdict = detector.Verdict{}
	}
}

func observe(surface Surface, start time.Time) {
	detectionDuration.WithLabelValues(string(surface)).Observe(time.Since(start).Seconds())
}
