package auth

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor used by HashPassword. It is fixed at process
// start (SetBcryptCost from config or tests) and read atomically afterwards.
var bcryptCost atomic.Int32

func init() {
	bcryptCost.Store(int32(bcrypt.DefaultCost))
}

// SetBcryptCost tunes the hashing work factor. Call it once during startup,
// before any request handling begins.
func SetBcryptCost(cost int) error {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost %d outside valid range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	bcryptCost.Store(int32(cost))
	return nil
}

// BcryptCost returns the currently configured work factor.
func BcryptCost() int {
	return int(bcryptCost.Load())
}

// HashPassword will generate a password hash. The output is salted, so
// hashing the same password twice yields different values.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
