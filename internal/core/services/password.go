package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters; the memory unit is KiB.
const (
	argonMemory      = 15000
	argonIterations  = 2
	argonParallelism = 1
	argonSaltLength  = 16
	argonKeyLength   = 32
)

// dummyPasswordHash is a hash of a throwaway password with the production
// parameters. Login verifies against it when the email is unknown so the
// request cost does not reveal whether an account exists.
const dummyPasswordHash = "$argon2id$v=19$m=15000,t=2,p=1$gZiV/M1gPc22ElAH/Jh1Hw$CWOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno"

// ErrHasherClosed is returned by Hash and Verify after Close.
var ErrHasherClosed = errors.New("password hasher is closed")

// PasswordHasher runs argon2id work on a fixed pool of workers so hashing
// cannot starve the connection-serving goroutines under a login burst.
type PasswordHasher struct {
	jobs chan func()
	quit chan struct{}
	once sync.Once
}

func NewPasswordHasher(workers int) *PasswordHasher {
	if workers < 1 {
		workers = 1
	}
	h := &PasswordHasher{
		jobs: make(chan func()),
		quit: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go h.worker()
	}
	return h
}

func (h *PasswordHasher) worker() {
	for {
		select {
		case job := <-h.jobs:
			job()
		case <-h.quit:
			return
		}
	}
}

// Close stops the workers. In-flight jobs finish; pending and later
// submits fail with ErrHasherClosed. Safe to call more than once.
func (h *PasswordHasher) Close() {
	h.once.Do(func() { close(h.quit) })
}

func (h *PasswordHasher) run(ctx context.Context, job func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-h.quit:
		return ErrHasherClosed
	default:
	}

	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		job()
	}
	select {
	case h.jobs <- wrapped:
	case <-h.quit:
		return ErrHasherClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Hash derives an argon2id PHC string from a plain text password.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	var encoded string
	var hashErr error
	err := h.run(ctx, func() {
		encoded, hashErr = hashPassword(password)
	})
	if err != nil {
		return "", err
	}
	return encoded, hashErr
}

// Verify compares a plain text password against a stored PHC string.
func (h *PasswordHasher) Verify(ctx context.Context, encodedHash, password string) (bool, error) {
	var match bool
	var cmpErr error
	err := h.run(ctx, func() {
		match, cmpErr = comparePassword(password, encodedHash)
	})
	if err != nil {
		return false, err
	}
	return match, cmpErr
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonIterations, argonParallelism, b64Salt, b64Hash), nil
}

func comparePassword(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false, errors.New("invalid hash format")
	}

	var version, memory, iterations, parallelism int
	fmt.Sscanf(parts[2], "v=%d", &version)
	fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, err
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, err
	}

	comparisonHash := argon2.IDKey([]byte(password), salt,
		uint32(iterations), uint32(memory), uint8(parallelism), uint32(len(decodedHash)))

	return subtle.ConstantTimeCompare(decodedHash, comparisonHash) == 1, nil
}
