package impl

import "golang.org/x/crypto/bcrypt"

type PasswordServiceBcrypt struct {
	cost int
}

func NewPasswordServiceBcrypt() *PasswordServiceBcrypt {
	return &PasswordServiceBcrypt{cost: bcrypt.DefaultCost}
}

func (p *PasswordServiceBcrypt) Hash(password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyCredential
	}
	return bcrypt.GenerateFromPassword([]byte(password), p.cost)
}

func (p *PasswordServiceBcrypt) Verify(password string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
