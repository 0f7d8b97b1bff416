package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/crmarques/credstore/config"
	"github.com/crmarques/credstore/credential"
	"github.com/crmarques/credstore/faults"
)

const (
	tokenVersion     = 1
	keyLengthBytes   = 32
	nonceLengthBytes = 12
	saltLengthBytes  = 16

	// version | time | memory | threads | salt | nonce
	headerLengthBytes = 1 + 4 + 4 + 1 + saltLengthBytes + nonceLengthBytes

	defaultKDFTime    = 1
	defaultKDFMemory  = 64 * 1024
	defaultKDFThreads = 4
)

var _ credential.Cipher = (*AEADCipher)(nil)

// AEADCipher seals secrets with AES-256-GCM under an Argon2id key derived
// from the passphrase. Every token carries its own KDF parameters, salt and
// nonce, so the key is a function of the passphrase and that token's salt:
// the same passphrase derives the same key for a given token, and a new key
// for each new token. Decrypt refuses headers whose KDF cost exceeds
// config.MaxKDFTime or config.MaxKDFMemory before deriving anything.
type AEADCipher struct {
	kdf kdfSettings
}

type kdfSettings struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

type tokenHeader struct {
	kdf   kdfSettings
	salt  []byte
	nonce []byte
}

func NewAEADCipher(kdf *config.KDF) (*AEADCipher, error) {
	settings, err := resolveKDFSettings(kdf)
	if err != nil {
		return nil, err
	}
	return &AEADCipher{kdf: settings}, nil
}

func (c *AEADCipher) Encrypt(plaintext string, passphrase string) (string, error) {
	if passphrase == "" {
		return "", validationError("passphrase must not be empty", nil)
	}

	salt, err := randomBytes(saltLengthBytes)
	if err != nil {
		return "", internalError("failed to generate cipher salt", err)
	}
	nonce, err := randomBytes(nonceLengthBytes)
	if err != nil {
		return "", internalError("failed to generate cipher nonce", err)
	}

	header := tokenHeader{kdf: c.kdf, salt: salt, nonce: nonce}
	encodedHeader := header.encode()

	gcm, err := newGCM(passphrase, header)
	if err != nil {
		return "", err
	}

	plaintextBytes := []byte(plaintext)
	defer clear(plaintextBytes)

	// The header is authenticated as additional data so KDF parameters
	// cannot be altered without failing decryption.
	output := make([]byte, headerLengthBytes, headerLengthBytes+len(plaintextBytes)+gcm.Overhead())
	copy(output, encodedHeader)
	sealed := gcm.Seal(output, nonce, plaintextBytes, encodedHeader)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *AEADCipher) Decrypt(token string, passphrase string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return "", decryptionError("ciphertext token is not valid base64", err)
	}

	header, err := decodeTokenHeader(raw)
	if err != nil {
		return "", err
	}

	gcm, err := newGCM(passphrase, header)
	if err != nil {
		return "", err
	}

	encodedHeader := raw[:headerLengthBytes]
	plaintext, err := gcm.Open(nil, header.nonce, raw[headerLengthBytes:], encodedHeader)
	if err != nil {
		return "", decryptionError("failed to decrypt secret with provided passphrase", nil)
	}
	defer clear(plaintext)

	return string(plaintext), nil
}

func newGCM(passphrase string, header tokenHeader) (cipher.AEAD, error) {
	passphraseBytes := []byte(passphrase)
	defer clear(passphraseBytes)

	key := argon2.IDKey(passphraseBytes, header.salt, header.kdf.Time, header.kdf.Memory, header.kdf.Threads, keyLengthBytes)
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, internalError("failed to initialize secret cipher", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, internalError("failed to initialize secret cipher mode", err)
	}
	return gcm, nil
}

func (h tokenHeader) encode() []byte {
	buffer := make([]byte, 0, headerLengthBytes)
	buffer = append(buffer, tokenVersion)
	buffer = binary.BigEndian.AppendUint32(buffer, h.kdf.Time)
	buffer = binary.BigEndian.AppendUint32(buffer, h.kdf.Memory)
	buffer = append(buffer, h.kdf.Threads)
	buffer = append(buffer, h.salt...)
	buffer = append(buffer, h.nonce...)
	return buffer
}

func decodeTokenHeader(raw []byte) (tokenHeader, error) {
	if len(raw) < headerLengthBytes {
		return tokenHeader{}, decryptionError("ciphertext token is truncated", nil)
	}
	if raw[0] != tokenVersion {
		return tokenHeader{}, decryptionError("ciphertext token version is unsupported", nil)
	}

	header := tokenHeader{
		kdf: kdfSettings{
			Time:    binary.BigEndian.Uint32(raw[1:5]),
			Memory:  binary.BigEndian.Uint32(raw[5:9]),
			Threads: raw[9],
		},
	}
	offset := 10
	header.salt = raw[offset : offset+saltLengthBytes]
	offset += saltLengthBytes
	header.nonce = raw[offset : offset+nonceLengthBytes]

	if !header.kdf.valid() {
		return tokenHeader{}, decryptionError("ciphertext token key derivation parameters are invalid", nil)
	}
	return header, nil
}

func (s kdfSettings) valid() bool {
	return s.Time > 0 && s.Time <= config.MaxKDFTime &&
		s.Memory > 0 && s.Memory <= config.MaxKDFMemory &&
		s.Threads > 0
}

func resolveKDFSettings(kdf *config.KDF) (kdfSettings, error) {
	settings := kdfSettings{
		Time:    defaultKDFTime,
		Memory:  defaultKDFMemory,
		Threads: defaultKDFThreads,
	}

	if kdf == nil {
		return settings, nil
	}

	if kdf.Time < 0 || kdf.Memory < 0 || kdf.Threads < 0 {
		return kdfSettings{}, validationError("cipher.kdf values must be non-negative", nil)
	}
	if kdf.Time > config.MaxKDFTime || kdf.Memory > config.MaxKDFMemory || kdf.Threads > config.MaxKDFThreads {
		return kdfSettings{}, validationError("cipher.kdf values exceed supported limits", nil)
	}

	if kdf.Time > 0 {
		settings.Time = uint32(kdf.Time)
	}
	if kdf.Memory > 0 {
		settings.Memory = uint32(kdf.Memory)
	}
	if kdf.Threads > 0 {
		settings.Threads = uint8(kdf.Threads)
	}

	return settings, nil
}

func randomBytes(length int) ([]byte, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func decryptionError(message string, cause error) error {
	return faults.NewTypedError(faults.DecryptionError, message, cause)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
