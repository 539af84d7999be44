package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gamemod/warden/moderation/cachestore"
	"github.com/gamemod/warden/moderation/config"
	"github.com/gamemod/warden/moderation/detector"
	"github.com/gamemod/warden/moderation/ledger"
	"github.com/gamemod/warden/moderation/storage"
)

// CollectingDispatcher records dispatched commands instead of executing
// them.
type CollectingDispatcher struct {
	mu       sync.Mutex
	Commands []string
}

func (d *CollectingDispatcher) Dispatch(command string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Commands = append(d.Commands, command)
}

func (d *CollectingDispatcher) Collected() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.Commands))
	copy(out, d.Commands)
	return out
}

// EngineTestFixture builds a fully wired engine over in-memory storage and
// cache, with a policy tuned so each detector is easy to trip.
func EngineTestFixture(pol config.Policy, exempt ExemptFunc) (*Engine, *CollectingDispatcher, *ledger.Ledger) {
	store := storage.NewMemStore()
	cache := cachestore.NewMemCacheStore(32, time.Hour)
	led := ledger.New(store, cache, time.Duration(pol.ViolationDurationMs)*time.Millisecond, slog.Default())
	dispatcher := &CollectingDispatcher{}
	eng, err := New(Config{
		Logger:     slog.Default(),
		Policy:     pol,
		Ledger:     led,
		Dispatcher: dispatcher,
		Exempt:     exempt,
	})
	if err != nil {
		panic(err)
	}
	return eng, dispatcher, led
}

// TestPolicy is a small deterministic policy for fixtures.
func TestPolicy() config.Policy {
	pol := config.Default()
	pol.Spam.ChatDelaySeconds = 0
	pol.Spam.MaxChatDuplicates = 3
	pol.Spam.CommandDelaySeconds = 0
	pol.Spam.MaxCommandDuplicates = 3
	pol.Caps.MinLength = 10
	pol.Caps.Ratio = 0.70
	pol.Swear.BannedWords = []string{"frag"}
	pol.Swear.CharClasses = map[string]string{"a": "[a@4]"}
	pol.BlockedCommands = []string{"/op", "/stop"}
	pol.Rules = map[string][]config.ThresholdRuleConfig{
		string(detector.CategorySwear): {
			{Op: "==", Amount: 1, Command: "warn {player} watch your language"},
			{Op: ">=", Amount: 3, Command: "mute {player} 5m"},
		},
		string(detector.CategoryAdvertisement): {
			{Op: ">=", Amount: 1, Command: "kick {player} no advertising"},
		},
	}
	return pol
}
