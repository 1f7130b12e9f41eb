package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const sessionExt = ".json"

// FileStore keeps one JSON file per session in a directory. Writes go
// through a temp file and rename, so concurrent CLI invocations never read
// a half-written session.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed. An empty dir means
// $XDG_CONFIG_HOME/svg2png/sessions, falling back to ~/.config.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		d, err := defaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func defaultDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locate session dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "svg2png", "sessions"), nil
}

// path maps an id to its file, or "" for ids that would leave the directory.
func (s *FileStore) path(id string) string {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return ""
	}
	return filepath.Join(s.dir, id+sessionExt)
}

func (s *FileStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	p := s.path(sessionID)
	if p == "" {
		return nil, nil
	}
	sess, err := readSession(p)
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.IsExpired() {
		_ = os.Remove(p)
		return nil, nil
	}
	return sess, nil
}

func (s *FileStore) Set(ctx context.Context, sess *Session) error {
	p := s.path(sess.ID)
	if p == "" {
		return fmt.Errorf("invalid session id %q", sess.ID)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".session-*")
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp.Name(), p)
}

func (s *FileStore) Delete(ctx context.Context, sessionID string) error {
	p := s.path(sessionID)
	if p == "" {
		return nil
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Cleanup removes expired session files. Unreadable files are left alone.
func (s *FileStore) Cleanup(ctx context.Context) error {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+sessionExt))
	if err != nil {
		return err
	}
	for _, p := range matches {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if sess, err := readSession(p); err == nil && sess != nil && sess.IsExpired() {
			_ = os.Remove(p)
		}
	}
	return nil
}

// Path returns the session directory.
func (s *FileStore) Path() string {
	return s.dir
}

func readSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", filepath.Base(path), err)
	}
	return &sess, nil
}

var _ Store = (*FileStore)(nil)

// CLIID is the one session the CLI uses, its stand-in for the page-wide
// selection slot.
const CLIID = "cli"

// CLIStore is a FileStore addressed through the fixed CLI session. It is
// itself a Store, so intake and dispatch take it directly.
type CLIStore struct {
	*FileStore
}

// NewCLIStoreAt opens a CLI store in dir (see NewFileStore for the default).
func NewCLIStoreAt(dir string) (*CLIStore, error) {
	fs, err := NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return &CLIStore{FileStore: fs}, nil
}

func (c *CLIStore) ID() string { return CLIID }

// SessionPath returns the file holding the CLI session.
func (c *CLIStore) SessionPath() string { return c.path(CLIID) }
