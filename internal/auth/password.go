package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher defines the contract for credential hashing. The
// service layer depends on the interface so tests can lower the cost.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encoded string) error
}

// BcryptHasher hashes passwords with bcrypt. Each hash carries its own
// salt, so equal passwords produce distinct hashes and comparison must
// go through Verify.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

// NewBcryptHasherWithCost allows a custom cost factor, mainly so tests
// can use bcrypt.MinCost.
func NewBcryptHasherWithCost(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(plaintext, encoded string) error {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext))
}
