package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rydhlnst/capstone-project/internal/analysis"
	"github.com/Rydhlnst/capstone-project/internal/common"
	"github.com/Rydhlnst/capstone-project/internal/session"
)

const keyPrefix = "vibelytube:session:"

// Store keeps sessions as JSON blobs in redis. Per-session serialization is
// enforced with a process-local mutex per key; the deployment model is a
// single API process, so cross-process writers are not coordinated.
type Store struct {
	rdb *redis.Client
	ttl time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(addr, password string, db int, ttl time.Duration) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl:   ttl,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *Store) load(ctx context.Context, id string) (*session.Session, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var sess session.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *Store) save(ctx context.Context, sess *session.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, keyPrefix+sess.SessionID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context) (*session.Session, error) {
	id, err := common.NewSessionID()
	if err != nil {
		return nil, err
	}
	sess := &session.Session{SessionID: id, CreatedAt: time.Now()}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()
	return s.load(ctx, id)
}

func (s *Store) GetOrCreate(ctx context.Context, id string) (*session.Session, error) {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	sess, err := s.load(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		sess = &session.Session{SessionID: id, CreatedAt: time.Now()}
		if err := s.save(ctx, sess); err != nil {
			return nil, err
		}
		return sess, nil
	}
	return sess, err
}

func (s *Store) AppendAnalysis(ctx context.Context, id string, res analysis.Result) error {
	return s.Update(ctx, id, func(sess *session.Session) error {
		sess.Analyses = append(sess.Analyses, res)
		return nil
	})
}

func (s *Store) Update(ctx context.Context, id string, fn func(*session.Session) error) error {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	sess, err := s.load(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		sess = &session.Session{SessionID: id, CreatedAt: time.Now()}
	} else if err != nil {
		return err
	}

	if err := fn(sess); err != nil {
		return err
	}
	return s.save(ctx, sess)
}

var _ session.Store = (*Store)(nil)
