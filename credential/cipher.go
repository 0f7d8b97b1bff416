package credential

// Cipher encrypts secrets under a passphrase into self-contained text tokens.
//
// Decrypt must fail with a faults.DecryptionError when the passphrase does not
// match or the token is malformed; it never returns a different plaintext.
type Cipher interface {
	Encrypt(plaintext string, passphrase string) (string, error)
	Decrypt(token string, passphrase string) (string, error)
}
