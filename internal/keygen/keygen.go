// Package keygen produces the public short keys and admin secret keys.
package keygen

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/mkovalev/linkcut/internal/storage"
)

// Alphabet is the character set for generated keys: uppercase letters
// and digits, URL-safe and unambiguous in spoken use.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	// KeyLength is the public key length. 36^5 candidates keep the
	// collision retry loop a formality.
	KeyLength = 5

	// secretSuffixLength is how many extra characters the admin secret
	// key carries on top of the public key. The suffix adds entropy;
	// uniqueness already follows from the key itself.
	secretSuffixLength = 8

	secretSeparator = "_"
)

// KeyChecker is the slice of the record store the generator needs: a
// lookup that sees inactive records too, so deactivated keys are never
// reissued.
type KeyChecker interface {
	FindByKey(ctx context.Context, key string) (*storage.URLRecord, error)
}

// Generator creates keys and verifies them against the store before
// they are committed.
type Generator struct {
	store KeyChecker
}

func New(store KeyChecker) *Generator {
	return &Generator{store: store}
}

// Random returns n characters drawn from Alphabet with crypto/rand.
func Random(n int) (string, error) {
	max := big.NewInt(int64(len(Alphabet)))
	out := make([]byte, n)

	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random key char: %w", err)
		}
		out[i] = Alphabet[idx.Int64()]
	}

	return string(out), nil
}

// Unique generates key candidates until one is free in the store. The
// loop is unbounded: a colliding key is never returned, and a store
// error aborts rather than being mistaken for a free slot.
func (g *Generator) Unique(ctx context.Context) (string, error) {
	for {
		key, err := Random(KeyLength)
		if err != nil {
			return "", err
		}

		_, err = g.store.FindByKey(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			return key, nil
		}
		if err != nil {
			return "", fmt.Errorf("key uniqueness check: %w", err)
		}
		// Taken, go again.
	}
}

// SecretFor derives the admin secret key for a public key.
func SecretFor(key string) (string, error) {
	suffix, err := Random(secretSuffixLength)
	if err != nil {
		return "", err
	}
	return key + secretSeparator + suffix, nil
}
