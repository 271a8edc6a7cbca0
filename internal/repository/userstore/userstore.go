// Package userstore implements domain.UserRepository over a blob.Store:
// one JSON document per user plus a singleton master index document used
// for lookup-by-name and leaderboard queries.
package userstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/msomdec/code-journal/internal/domain"
	"github.com/msomdec/code-journal/internal/repository/blob"
)

const (
	userKeyPrefix = "users/"
	indexKey      = "master"
)

var _ domain.UserRepository = (*Store)(nil)

// Store implements domain.UserRepository.
//
// Every mutation is a read-modify-write cycle against durable storage; the
// per-user mutex is held for the whole cycle so two concurrent operations
// on the same user cannot lose updates. Index writes serialize behind a
// single index-wide mutex. Lock order is always user lock, then index lock.
type Store struct {
	blobs blob.Store

	mu    sync.Mutex // guards locks
	locks map[string]*sync.Mutex

	indexMu sync.Mutex
}

// New wraps a blob store and creates the master index document if missing.
func New(ctx context.Context, blobs blob.Store) (*Store, error) {
	s := &Store{
		blobs: blobs,
		locks: make(map[string]*sync.Mutex),
	}

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	if _, err := s.blobs.Get(ctx, indexKey); err != nil {
		if err != domain.ErrNotFound {
			return nil, fmt.Errorf("check master index: %w", err)
		}
		if err := s.writeIndex(ctx, domain.NewMasterIndex(time.Now().UTC())); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) userLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Create persists a new user document and registers its index entry. The
// username uniqueness check runs against the master index, which is
// authoritative for lookup, and is held under the index lock so two
// concurrent creates cannot both pass it.
func (s *Store) Create(ctx context.Context, user *domain.User) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	index, err := s.readIndex(ctx)
	if err != nil {
		return err
	}

	if index.FindByUsername(user.Username) != nil {
		return domain.ErrDuplicateUsername
	}

	if err := s.writeUser(ctx, user); err != nil {
		return err
	}

	index.Upsert(domain.EntryFor(user))
	index.Metadata.TotalUsers = len(index.Users)
	return s.writeIndex(ctx, index)
}

// Get loads a user document by id.
func (s *Store) Get(ctx context.Context, id string) (*domain.User, error) {
	data, err := s.blobs.Get(ctx, userKeyPrefix+id)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read user %s: %w", id, err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return &user, nil
}

// GetByUsername resolves the id through the master index, then loads the
// document. A record on disk that is absent from the index is not found.
func (s *Store) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.indexMu.Lock()
	index, err := s.readIndex(ctx)
	s.indexMu.Unlock()
	if err != nil {
		return nil, err
	}

	entry := index.FindByUsername(username)
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	return s.Get(ctx, entry.ID)
}

// Save fully replaces the persisted document, stamps lastActivity, and
// refreshes the user's index entry. Last write wins.
func (s *Store) Save(ctx context.Context, user *domain.User) error {
	lock := s.userLock(user.ID)
	lock.Lock()
	defer lock.Unlock()
	return s.save(ctx, user)
}

// Update runs fn on a freshly loaded copy of the user under the user's
// lock, then persists the result. If fn fails, nothing is written.
func (s *Store) Update(ctx context.Context, id string, fn func(*domain.User) error) (*domain.User, error) {
	lock := s.userLock(id)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(user); err != nil {
		return nil, err
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// save assumes the caller holds the user's lock.
func (s *Store) save(ctx context.Context, user *domain.User) error {
	user.Metadata.LastActivity = time.Now().UTC()
	user.Metadata.Version = domain.SchemaVersion

	if err := s.writeUser(ctx, user); err != nil {
		return err
	}

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	index, err := s.readIndex(ctx)
	if err != nil {
		return err
	}
	index.Upsert(domain.EntryFor(user))
	return s.writeIndex(ctx, index)
}

// Index returns the master index document.
func (s *Store) Index(ctx context.Context) (*domain.MasterIndex, error) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	return s.readIndex(ctx)
}

// RebuildIndex reconstructs the master index from the user documents,
// keeping registration order (creation time, then id for same-instant
// creations), and recomputes the aggregate statistics.
func (s *Store) RebuildIndex(ctx context.Context) (*domain.MasterIndex, error) {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	keys, err := s.blobs.List(ctx, userKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	index := domain.NewMasterIndex(time.Now().UTC())
	var stats domain.IndexStatistics

	var users []*domain.User
	for _, key := range keys {
		user, err := s.Get(ctx, strings.TrimPrefix(key, userKeyPrefix))
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	// Registration order; ties broken by id so rebuilds are deterministic.
	sort.Slice(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if !a.Metadata.CreatedAt.Equal(b.Metadata.CreatedAt) {
			return a.Metadata.CreatedAt.Before(b.Metadata.CreatedAt)
		}
		return a.ID < b.ID
	})

	for _, user := range users {
		index.Upsert(domain.EntryFor(user))
		stats.TotalXPAwarded += user.XP
		stats.TotalSessions += user.Statistics.TotalSessions
		stats.TotalProjects += user.Statistics.TotalProjects
		stats.TotalErrors += user.Statistics.TotalErrors
	}

	index.Metadata.TotalUsers = len(index.Users)
	index.Statistics = stats

	if err := s.writeIndex(ctx, index); err != nil {
		return nil, err
	}
	return index, nil
}

func (s *Store) writeUser(ctx context.Context, user *domain.User) error {
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user %s: %w", user.ID, err)
	}
	if err := s.blobs.Put(ctx, userKeyPrefix+user.ID, data); err != nil {
		return fmt.Errorf("write user %s: %w", user.ID, err)
	}
	return nil
}

// readIndex and writeIndex assume the caller holds indexMu.
func (s *Store) readIndex(ctx context.Context) (*domain.MasterIndex, error) {
	data, err := s.blobs.Get(ctx, indexKey)
	if err != nil {
		if err == domain.ErrNotFound {
			return domain.NewMasterIndex(time.Now().UTC()), nil
		}
		return nil, fmt.Errorf("read master index: %w", err)
	}

	var index domain.MasterIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decode master index: %w", err)
	}
	return &index, nil
}

func (s *Store) writeIndex(ctx context.Context, index *domain.MasterIndex) error {
	index.Metadata.LastUpdated = time.Now().UTC()
	index.Metadata.Version = domain.SchemaVersion

	var total int
	for i := range index.Users {
		total += index.Users[i].XP
	}
	index.Statistics.TotalXPAwarded = total

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("encode master index: %w", err)
	}
	if err := s.blobs.Put(ctx, indexKey, data); err != nil {
		return fmt.Errorf("write master index: %w", err)
	}
	return nil
}
