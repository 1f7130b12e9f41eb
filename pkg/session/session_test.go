package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	a, err := New(DefaultTTL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, _ := New(DefaultTTL)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("IDs should be unique and non-empty: %q, %q", a.ID, b.ID)
	}
	if a.HasSelection() {
		t.Error("new session should have no selection")
	}
	if a.IsExpired() {
		t.Error("new session should not be expired")
	}

	if _, err := NewWithID("", time.Hour); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestSelectAndSnapshot(t *testing.T) {
	sess, _ := New(DefaultTTL)
	sess.Select("a.svg", "<svg>a</svg>")

	snap := sess.Snapshot()
	sess.Select("b.svg", "<svg>bb</svg>")

	if snap != "<svg>a</svg>" {
		t.Errorf("snapshot changed after new selection: %q", snap)
	}
	if sess.FileName != "b.svg" || sess.Size != len("<svg>bb</svg>") {
		t.Errorf("Select did not update metadata: %+v", sess)
	}

	var none *Session
	if none.Snapshot() != "" || none.HasSelection() {
		t.Error("nil session should have no selection")
	}
}

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	got, err := store.Get(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("Get(missing) = %v, %v; want nil, nil", got, err)
	}

	sess, _ := New(time.Hour)
	sess.Select("logo.svg", "<svg/>")
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err = store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.SVGText != "<svg/>" || got.FileName != "logo.svg" {
		t.Fatalf("Get = %+v", got)
	}

	// Mutating the returned copy must not change the stored value.
	got.Select("other.svg", "<svg>other</svg>")
	again, _ := store.Get(ctx, sess.ID)
	if again.SVGText != "<svg/>" {
		t.Errorf("stored session changed through returned copy: %q", again.SVGText)
	}

	expired, _ := New(time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Set(ctx, expired); err != nil {
		t.Fatalf("Set expired: %v", err)
	}
	if got, _ := store.Get(ctx, expired.ID); got != nil {
		t.Error("expired session should not be returned")
	}
	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, sess.ID); got != nil {
		t.Error("deleted session should not be returned")
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStoreCleanup(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	live, _ := New(time.Hour)
	dead, _ := New(time.Hour)
	dead.ExpiresAt = time.Now().Add(-time.Second)
	store.Set(ctx, live)
	store.Set(ctx, dead)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	testStore(t, store)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "sessions"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	sess, _ := NewWithID("../escape", time.Hour)
	if err := store.Set(context.Background(), sess); err == nil {
		t.Error("expected error for id with path separator")
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.json")); !os.IsNotExist(err) {
		t.Error("session file written outside the store directory")
	}
	if got, err := store.Get(context.Background(), "../escape"); got != nil || err != nil {
		t.Errorf("Get(traversal) = %v, %v", got, err)
	}
}

func TestCLIStore(t *testing.T) {
	dir := t.TempDir()
	cli, err := NewCLIStoreAt(dir)
	if err != nil {
		t.Fatalf("NewCLIStoreAt: %v", err)
	}
	ctx := context.Background()

	if cli.ID() != CLIID {
		t.Errorf("ID() = %q, want %q", cli.ID(), CLIID)
	}
	if cli.SessionPath() != filepath.Join(dir, "cli.json") {
		t.Errorf("SessionPath() = %q", cli.SessionPath())
	}

	sess, _ := NewWithID(cli.ID(), time.Hour)
	sess.Select("x.svg", "<svg/>")
	if err := cli.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := cli.Get(ctx, cli.ID())
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.SVGText != "<svg/>" {
		t.Errorf("Get = %+v", got)
	}
	if _, err := os.Stat(cli.SessionPath()); err != nil {
		t.Errorf("session file missing: %v", err)
	}
}

func TestFileStoreCleanup(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	old, _ := NewWithID("old", time.Nanosecond)
	fresh, _ := NewWithID("fresh", time.Hour)
	for _, s := range []*Session{old, fresh} {
		if err := store.Set(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	garbage := filepath.Join(store.Path(), "garbage.json")
	if err := os.WriteFile(garbage, []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(store.path("old")); !os.IsNotExist(err) {
		t.Error("expired session should be removed")
	}
	if _, err := os.Stat(store.path("fresh")); err != nil {
		t.Error("live session should survive Cleanup")
	}
	if _, err := os.Stat(garbage); err != nil {
		t.Error("unreadable file should be left alone")
	}
}

// Backends needing a server run only when an address is provided.

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("SVG2PNG_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SVG2PNG_TEST_REDIS_ADDR not set")
	}
	store, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer store.Close()
	testStore(t, store)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("SVG2PNG_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SVG2PNG_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	store, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "svg2png_test"})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer store.Close(ctx)
	testStore(t, store)
}
