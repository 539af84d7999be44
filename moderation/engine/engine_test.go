package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamemod/warden/moderation/cachestore"
	"github.com/gamemod/warden/moderation/detector"
	"github.com/gamemod/warden/moderation/ledger"
	"github.com/gamemod/warden/moderation/storage"
)

func waitForCommands(t *testing.T, d *CollectingDispatcher, want int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cmds := d.Collected(); len(cmds) >= want {
			return cmds
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d dispatched commands, got %v", want, d.Collected())
	return nil
}

func TestEngineSwearPipeline(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, dispatcher, led := EngineTestFixture(TestPolicy(), nil)
	defer eng.Shutdown(ctx)

	v := eng.ProcessChat(ctx, "p1", "Steve", "you fr@g")
	assert.True(v.Blocked)
	assert.Equal(detector.CategorySwear, v.Category)
	assert.Equal(detector.ReasonSwear, v.Reason)

	cmds := waitForCommands(t, dispatcher, 1)
	assert.Equal([]string{"warn Steve watch your language"}, cmds)

	count, err := led.ActiveCount(ctx, "p1", detector.CategorySwear)
	assert.NoError(err)
	assert.Equal(1, count)
}

func TestEngineThresholdEscalation(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, dispatcher, _ := EngineTestFixture(TestPolicy(), nil)
	defer eng.Shutdown(ctx)

	// Distinct messages avoid the duplicate counter; all contain the
	// banned word
	for _, msg := range []string{"frag one", "frag two", "frag three"} {
		v := eng.ProcessChat(ctx, "p1", "Steve", msg)
		assert.True(v.Blocked)
	}

	// First violation fires the ==1 rule, the third fires >=3
	cmds := waitForCommands(t, dispatcher, 2)
	assert.Contains(cmds, "warn Steve watch your language")
	assert.Contains(cmds, "mute Steve 5m")
}

func TestEngineBlockedCommandNotRecorded(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, dispatcher, led := EngineTestFixture(TestPolicy(), nil)
	defer eng.Shutdown(ctx)

	v := eng.ProcessCommand(ctx, "p1", "Steve", "/op Steve")
	assert.True(v.Blocked)
	assert.Equal(detector.ReasonBlockedCommand, v.Reason)

	// Refusal only: no violation row, no dispatched punishment
	time.Sleep(50 * time.Millisecond)
	assert.Empty(dispatcher.Collected())
	all, err := led.Violations(ctx, "p1")
	assert.NoError(err)
	assert.Empty(all)
}

func TestEngineExemption(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	exempt := func(playerID string, cat detector.Category) bool {
		return playerID == "mod" && cat == detector.CategorySwear
	}
	eng, _, _ := EngineTestFixture(TestPolicy(), exempt)
	defer eng.Shutdown(ctx)

	assert.False(eng.ProcessChat(ctx, "mod", "Mod", "frag off").Blocked)
	assert.True(eng.ProcessChat(ctx, "p1", "Steve", "frag off").Blocked)
}

func TestEngineAdvertisement(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, dispatcher, _ := EngineTestFixture(TestPolicy(), nil)
	defer eng.Shutdown(ctx)

	v := eng.ProcessChat(ctx, "p1", "Steve", "join play.example.com now")
	assert.True(v.Blocked)
	assert.Equal(detector.CategoryAdvertisement, v.Category)

	cmds := waitForCommands(t, dispatcher, 1)
	assert.Equal([]string{"kick Steve no advertising"}, cmds)
}

func TestEngineTextSurfaces(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, _, _ := EngineTestFixture(TestPolicy(), nil)
	defer eng.Shutdown(ctx)

	assert.True(eng.CheckText(ctx, "p1", "Steve", SurfaceSign, "FRAG").Blocked)
	assert.True(eng.CheckText(ctx, "p1", "Steve", SurfaceBook, "a fr@g tale").Blocked)
	assert.False(eng.CheckText(ctx, "p1", "Steve", SurfaceAnvil, "Excalibur").Blocked)
}

func TestEngineDuplicateCounting(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, _, _ := EngineTestFixture(TestPolicy(), nil)
	defer eng.Shutdown(ctx)

	assert.False(eng.ProcessChat(ctx, "p1", "Steve", "hello").Blocked)
	assert.False(eng.ProcessChat(ctx, "p1", "Steve", "hello").Blocked)
	v := eng.ProcessChat(ctx, "p1", "Steve", "hello")
	assert.True(v.Blocked)
	assert.Equal(detector.ReasonChatDuplicate, v.Reason)

	// Session state is per player
	assert.False(eng.ProcessChat(ctx, "p2", "Alex", "hello").Blocked)

	// Disconnect resets the counter
	eng.Disconnect("p1")
	assert.False(eng.ProcessChat(ctx, "p1", "Steve", "hello").Blocked)
}

func TestEngineReload(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, _, _ := EngineTestFixture(TestPolicy(), nil)
	defer eng.Shutdown(ctx)

	assert.False(eng.ProcessChat(ctx, "p1", "Steve", "blorb").Blocked)

	pol := TestPolicy()
	pol.Swear.BannedWords = []string{"blorb"}
	require.NoError(eng.Reload(pol))

	assert.True(eng.ProcessChat(ctx, "p1", "Steve", "blorb").Blocked)
}

func TestEngineExemptPermissionsFollowPolicy(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, _, _ := EngineTestFixture(TestPolicy(), nil)
	defer eng.Shutdown(ctx)

	nodes := eng.ExemptPermissions()
	assert.Equal("warden.exempt.swear", nodes[detector.CategorySwear])

	pol := TestPolicy()
	pol.ExemptPermissions = map[string]string{"swear": "chat.bypass.swear"}
	require.NoError(t, eng.Reload(pol))

	nodes = eng.ExemptPermissions()
	assert.Equal("chat.bypass.swear", nodes[detector.CategorySwear])

	// the returned map is a copy, mutating it cannot poison the snapshot
	nodes[detector.CategorySwear] = "tampered"
	assert.Equal("chat.bypass.swear", eng.ExemptPermissions()[detector.CategorySwear])
}

// failingStore errors on violation writes but serves reads.
type failingStore struct {
	storage.Store
}

func (s *failingStore) PutViolation(ctx context.Context, rec *storage.ViolationRecord) error {
	return errors.New("disk on fire")
}

func TestEngineFailsOpenOnStorageError(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	pol := TestPolicy()
	led := ledger.New(&failingStore{Store: storage.NewMemStore()},
		cachestore.NewMemCacheStore(32, time.Hour),
		time.Duration(pol.ViolationDurationMs)*time.Millisecond, nil)
	dispatcher := &CollectingDispatcher{}
	eng, err := New(Config{
		Policy:     pol,
		Ledger:     led,
		Dispatcher: dispatcher,
	})
	assert.NoError(err)
	defer eng.Shutdown(ctx)

	// The message is still cancelled, but the failed write means no
	// punishment is dispatched
	v := eng.ProcessChat(ctx, "p1", "Steve", "frag")
	assert.True(v.Blocked)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(dispatcher.Collected())
}

func TestEngineMentionCooldown(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	pol := TestPolicy()
	pol.MentionCooldownSeconds = 3600
	eng, _, led := EngineTestFixture(pol, nil)
	defer eng.Shutdown(ctx)

	assert.True(eng.MentionAllowed(ctx, "p1", "p2"))
	assert.False(eng.MentionAllowed(ctx, "p1", "p2"))

	// An ignored sender never pings, and does not consume p3's cooldown
	require.NoError(led.AddIgnore(ctx, "p2", "p3"))
	assert.False(eng.MentionAllowed(ctx, "p3", "p2"))
	assert.True(eng.MentionAllowed(ctx, "p3", "p4"))
}

func TestEnginePardon(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	eng, dispatcher, led := EngineTestFixture(TestPolicy(), nil)
	defer eng.Shutdown(ctx)

	assert.True(eng.ProcessChat(ctx, "p1", "Steve", "frag").Blocked)
	waitForCommands(t, dispatcher, 1)

	all, err := led.Violations(ctx, "p1")
	require.NoError(err)
	require.Len(all, 1)

	require.NoError(eng.RemoveViolation(ctx, all[0].ID, "p1"))
	count, err := led.ActiveCount(ctx, "p1", detector.CategorySwear)
	assert.NoError(err)
	assert.Equal(0, count)
}

func TestEngineInvalidBannedWordClass(t *testing.T) {
	// Validate scrubs broken char classes before compilation, so a bad
	// policy degrades instead of failing construction
	pol := TestPolicy()
	pol.Swear.CharClasses = map[string]string{"a": "[unclosed"}
	eng, _, _ := EngineTestFixture(pol, nil)
	defer eng.Shutdown(context.Background())

	assert.True(t, eng.ProcessChat(context.Background(), "p1", "Steve", "frag").Blocked)
	assert.False(t, eng.ProcessChat(context.Background(), "p1", "Steve", "fr@g").Blocked)
}

func TestEngineShutdownDrains(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, dispatcher, _ := EngineTestFixture(TestPolicy(), nil)

	assert.True(eng.ProcessChat(ctx, "p1", "Steve", "frag").Blocked)
	assert.NoError(eng.Shutdown(ctx))
	assert.NotEmpty(dispatcher.Collected())
}

func TestEngineBlocksAfterShutdown(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, dispatcher, _ := EngineTestFixture(TestPolicy(), nil)
	require.NoError(t, eng.Shutdown(ctx))

	// detection still works after shutdown; the verdict holds and the
	// dropped event never panics the worker or reaches the dispatcher
	v := eng.ProcessChat(ctx, "p1", "Steve", "frag")
	assert.True(v.Blocked)
	assert.Equal(detector.CategorySwear, v.Category)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(dispatcher.Collected())
}
