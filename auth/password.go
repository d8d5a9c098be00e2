package auth

import (
	"context"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MinBcryptCost is the lowest work factor the Hasher will use.
const MinBcryptCost = 10

// Hasher wraps bcrypt with a bound on how many hashes run at once, so a
// burst of logins cannot take every CPU away from request handling.
type Hasher struct {
	cost  int
	sem   *semaphore.Weighted
	dummy []byte
}

// NewHasher clamps cost into [MinBcryptCost, bcrypt.MaxCost] and maxConcurrent
// to at least 1.
func NewHasher(cost, maxConcurrent int) (*Hasher, error) {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	// dummy is compared against when no user matches, so that path costs
	// the same as a wrong password.
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generating dummy secret: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword(seed, cost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy secret: %w", err)
	}

	return &Hasher{
		cost:  cost,
		sem:   semaphore.NewWeighted(int64(maxConcurrent)),
		dummy: dummy,
	}, nil
}

func (h *Hasher) Cost() int { return h.cost }

// Hash returns a salted bcrypt digest. Two calls on the same input give
// different digests.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plaintext matches digest. A malformed digest or a
// cancelled context yields false.
func (h *Hasher) Verify(ctx context.Context, plaintext, digest string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// burn spends the same effort as Verify and always fails.
func (h *Hasher) burn(ctx context.Context, plaintext string) {
	h.Verify(ctx, plaintext, string(h.dummy))
}
