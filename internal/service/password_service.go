package service

type PasswordService interface {
	Hash(password string) ([]byte, error)
	Verify(password string, hash []byte) bool
}
