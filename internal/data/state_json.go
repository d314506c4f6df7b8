package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/itspaddysday/paddybot/internal/biz/repo"
)

// stateData is the persisted record. Field names are part of the on-disk
// contract and must round-trip unchanged.
type stateData struct {
	BlacklistedSubs  []string `json:"blacklistedSubs"`
	WhitelistedSubs  []string `json:"whitelistedSubs"`
	BlacklistedUsers []string `json:"blacklistedUsers"`
	RespondedPosts   []string `json:"respondedPosts"`
}

// jsonStateRepo keeps the four sets in memory and persists them to a single
// JSON file on Flush. Load failures are fatal at construction; per-operation
// calls never touch the disk.
type jsonStateRepo struct {
	path string

	mu   sync.RWMutex
	data stateData

	// membership indexes over the slices above
	responded map[string]struct{}
	users     map[string]struct{}
	whitelist map[string]struct{}
	blacklist map[string]struct{}
}

// NewJSONStateRepo creates a JSON-file state repository. A missing file
// starts with empty sets; any other read error is fatal.
func NewJSONStateRepo(path string) (repo.StateRepo, error) {
	s := &jsonStateRepo{
		path: path,
		data: stateData{
			BlacklistedSubs:  []string{},
			WhitelistedSubs:  []string{},
			BlacklistedUsers: []string{},
			RespondedPosts:   []string{},
		},
		responded: make(map[string]struct{}),
		users:     make(map[string]struct{}),
		whitelist: make(map[string]struct{}),
		blacklist: make(map[string]struct{}),
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

func (s *jsonStateRepo) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return fmt.Errorf("parse state file: %w", err)
	}
	for _, id := range s.data.RespondedPosts {
		s.responded[id] = struct{}{}
	}
	for _, id := range s.data.BlacklistedUsers {
		s.users[id] = struct{}{}
	}
	for _, name := range s.data.WhitelistedSubs {
		s.whitelist[name] = struct{}{}
	}
	for _, name := range s.data.BlacklistedSubs {
		s.blacklist[name] = struct{}{}
	}
	return nil
}

func (s *jsonStateRepo) BlacklistCommunity(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blacklist[name]; ok {
		return nil
	}
	s.blacklist[name] = struct{}{}
	s.data.BlacklistedSubs = append(s.data.BlacklistedSubs, name)
	return nil
}

func (s *jsonStateRepo) WhitelistCommunity(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.whitelist[name]; ok {
		return nil
	}
	s.whitelist[name] = struct{}{}
	s.data.WhitelistedSubs = append(s.data.WhitelistedSubs, name)
	return nil
}

func (s *jsonStateRepo) ListWhitelistedCommunities(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.data.WhitelistedSubs))
	copy(out, s.data.WhitelistedSubs)
	return out, nil
}

func (s *jsonStateRepo) BlacklistAuthor(ctx context.Context, authorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[authorID]; ok {
		return nil
	}
	s.users[authorID] = struct{}{}
	s.data.BlacklistedUsers = append(s.data.BlacklistedUsers, authorID)
	return nil
}

func (s *jsonStateRepo) IsAuthorBlacklisted(ctx context.Context, authorID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[authorID]
	return ok, nil
}

func (s *jsonStateRepo) IsResponded(ctx context.Context, itemID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.responded[itemID]
	return ok, nil
}

func (s *jsonStateRepo) RecordResponded(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.responded[itemID]; ok {
		return nil
	}
	s.responded[itemID] = struct{}{}
	s.data.RespondedPosts = append(s.data.RespondedPosts, itemID)
	return nil
}

// Flush writes the record to disk.
func (s *jsonStateRepo) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// Close flushes one last time.
func (s *jsonStateRepo) Close() error {
	return s.Flush()
}
