package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/hrms-lite/internal/models"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
)

const draftKeyPrefix = "hr:batch:draft:"

// ErrDraftNotFound is returned when a draft is unknown or expired.
var ErrDraftNotFound = appErrors.Clone(appErrors.ErrNotFound, "batch draft not found")

func draftKey(id string) string { return draftKeyPrefix + id }
func lockKey(id string) string  { return draftKeyPrefix + id + ":lock" }

// DraftRepository keeps batch attendance drafts in Redis.
type DraftRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftRepository constructs a Redis backed draft store. Every save refreshes the TTL.
func NewDraftRepository(client *redis.Client, ttl time.Duration) *DraftRepository {
	return &DraftRepository{client: client, ttl: ttl}
}

// Get loads a draft by id.
func (r *DraftRepository) Get(ctx context.Context, id string) (*models.BatchDraft, error) {
	raw, err := r.client.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("redis get draft %s: %w", id, err)
	}
	var draft models.BatchDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft %s: %w", id, err)
	}
	return &draft, nil
}

// Save replaces the stored draft wholesale.
func (r *DraftRepository) Save(ctx context.Context, draft *models.BatchDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", draft.ID, err)
	}
	if err := r.client.Set(ctx, draftKey(draft.ID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft %s: %w", draft.ID, err)
	}
	return nil
}

// Delete drops a draft and any lock it holds.
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, draftKey(id), lockKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete draft %s: %w", id, err)
	}
	return nil
}

// Acquire takes the submission lock for a draft. It returns false when another submission holds it.
func (r *DraftRepository) Acquire(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKey(id), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis lock draft %s: %w", id, err)
	}
	return ok, nil
}

// Release frees the submission lock.
func (r *DraftRepository) Release(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, lockKey(id)).Err(); err != nil {
		return fmt.Errorf("redis unlock draft %s: %w", id, err)
	}
	return nil
}

// Locked reports whether a submission currently holds the draft.
func (r *DraftRepository) Locked(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, lockKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check lock %s: %w", id, err)
	}
	return n > 0, nil
}

// MemoryDraftRepository is the in-process draft store used when Redis is disabled.
type MemoryDraftRepository struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	drafts map[string]memoryDraft
	locks  map[string]time.Time
}

type memoryDraft struct {
	payload   []byte
	expiresAt time.Time
}

// NewMemoryDraftRepository constructs an in-memory draft store.
func NewMemoryDraftRepository(ttl time.Duration) *MemoryDraftRepository {
	return &MemoryDraftRepository{
		ttl:    ttl,
		now:    time.Now,
		drafts: map[string]memoryDraft{},
		locks:  map[string]time.Time{},
	}
}

// Get loads a draft by id.
func (r *MemoryDraftRepository) Get(_ context.Context, id string) (*models.BatchDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.drafts[id]
	if !ok || r.expired(stored.expiresAt) {
		delete(r.drafts, id)
		return nil, ErrDraftNotFound
	}
	var draft models.BatchDraft
	if err := json.Unmarshal(stored.payload, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft %s: %w", id, err)
	}
	return &draft, nil
}

// Save replaces the stored draft wholesale.
func (r *MemoryDraftRepository) Save(_ context.Context, draft *models.BatchDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", draft.ID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	var expiresAt time.Time
	if r.ttl > 0 {
		expiresAt = r.now().Add(r.ttl)
	}
	r.drafts[draft.ID] = memoryDraft{payload: payload, expiresAt: expiresAt}
	return nil
}

// Delete drops a draft and any lock it holds.
func (r *MemoryDraftRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drafts, id)
	delete(r.locks, id)
	return nil
}

// Acquire takes the submission lock for a draft.
func (r *MemoryDraftRepository) Acquire(_ context.Context, id string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	if until, held := r.locks[id]; held && !r.expired(until) {
		return false, nil
	}
	var until time.Time
	if ttl > 0 {
		until = r.now().Add(ttl)
	}
	r.locks[id] = until
	return true, nil
}

// Release frees the submission lock.
func (r *MemoryDraftRepository) Release(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locks, id)
	return nil
}

// Locked reports whether a submission currently holds the draft.
func (r *MemoryDraftRepository) Locked(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, held := r.locks[id]
	return held && !r.expired(until), nil
}

func (r *MemoryDraftRepository) expired(at time.Time) bool {
	return !at.IsZero() && !r.now().Before(at)
}

// sweepLocked drops expired drafts and locks. Callers hold r.mu.
func (r *MemoryDraftRepository) sweepLocked() {
	for id, stored := range r.drafts {
		if r.expired(stored.expiresAt) {
			delete(r.drafts, id)
		}
	}
	for id, until := range r.locks {
		if r.expired(until) {
			delete(r.locks, id)
		}
	}
}
