package rotation

import (
	"sync"

	"github.com/google/uuid"
)

type indexKey struct {
	playerID uuid.UUID
	titleID  string
}

// Tracker holds the per-player, per-title frame position of dynamic titles.
// Positions survive a title switch and resume where they left off when the
// player switches back.
type Tracker struct {
	mu      sync.Mutex
	indices map[indexKey]int
}

func NewTracker() *Tracker {
	return &Tracker{indices: make(map[indexKey]int)}
}

// Advance moves the pair one frame forward and returns the new index, wrapped
// to the content count. A non-positive count resets the pair to zero.
func (t *Tracker) Advance(playerID uuid.UUID, titleID string, contentCount int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := indexKey{playerID: playerID, titleID: titleID}
	if contentCount <= 0 {
		t.indices[key] = 0
		return 0
	}
	next := (t.indices[key] + 1) % contentCount
	t.indices[key] = next
	return next
}

// Index returns the pair's current frame without advancing it.
func (t *Tracker) Index(playerID uuid.UUID, titleID string, contentCount int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if contentCount <= 0 {
		return 0
	}
	return t.indices[indexKey{playerID: playerID, titleID: titleID}] % contentCount
}

// RemovePlayer drops every position the player holds.
func (t *Tracker) RemovePlayer(playerID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.indices {
		if key.playerID == playerID {
			delete(t.indices, key)
		}
	}
}

// RemoveTitle drops the position of one pair, used when a title is revoked.
func (t *Tracker) RemoveTitle(playerID uuid.UUID, titleID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.indices, indexKey{playerID: playerID, titleID: titleID})
}

// Size reports how many pairs are tracked.
func (t *Tracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.indices)
}
