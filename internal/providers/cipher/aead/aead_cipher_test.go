package aead

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
	"testing"
	"time"

	"github.com/crmarques/credstore/config"
	"github.com/crmarques/credstore/faults"
)

func newTestCipher(t *testing.T) *AEADCipher {
	t.Helper()

	cipher, err := NewAEADCipher(&config.KDF{Time: 1, Memory: 1024, Threads: 1})
	if err != nil {
		t.Fatalf("NewAEADCipher returned error: %v", err)
	}
	return cipher
}

func TestAEADCipherRoundTrip(t *testing.T) {
	t.Parallel()

	cipher := newTestCipher(t)
	testCases := []struct {
		name       string
		plaintext  string
		passphrase string
	}{
		{name: "simple", plaintext: "s3cr3t", passphrase: "pw1"},
		{name: "empty plaintext", plaintext: "", passphrase: "pw1"},
		{name: "unicode", plaintext: "pässwörd-密码", passphrase: "ключ"},
		{name: "long", plaintext: strings.Repeat("x", 4096), passphrase: "long passphrase with spaces"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			token, err := cipher.Encrypt(testCase.plaintext, testCase.passphrase)
			if err != nil {
				t.Fatalf("Encrypt returned error: %v", err)
			}
			if testCase.plaintext != "" && strings.Contains(token, testCase.plaintext) {
				t.Fatal("token contains plaintext")
			}
			if _, err := base64.StdEncoding.DecodeString(token); err != nil {
				t.Fatalf("token is not standard base64: %v", err)
			}

			plaintext, err := cipher.Decrypt(token, testCase.passphrase)
			if err != nil {
				t.Fatalf("Decrypt returned error: %v", err)
			}
			if plaintext != testCase.plaintext {
				t.Fatalf("expected %q, got %q", testCase.plaintext, plaintext)
			}
		})
	}
}

func TestAEADCipherWrongPassphrase(t *testing.T) {
	t.Parallel()

	cipher := newTestCipher(t)
	token, err := cipher.Encrypt("s3cr3t", "pw1")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	plaintext, err := cipher.Decrypt(token, "pw2")
	assertCategory(t, err, faults.DecryptionError)
	if plaintext != "" {
		t.Fatalf("expected empty plaintext on failure, got %q", plaintext)
	}
}

func TestAEADCipherTokensAreSelfContained(t *testing.T) {
	t.Parallel()

	writer := newTestCipher(t)
	token, err := writer.Encrypt("s3cr3t", "pw1")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	// A reader configured with different KDF costs still decrypts because the
	// parameters travel with the token.
	reader, err := NewAEADCipher(&config.KDF{Time: 2, Memory: 2048, Threads: 2})
	if err != nil {
		t.Fatalf("NewAEADCipher returned error: %v", err)
	}
	plaintext, err := reader.Decrypt(token, "pw1")
	if err != nil {
		t.Fatalf("Decrypt returned error: %v", err)
	}
	if plaintext != "s3cr3t" {
		t.Fatalf("expected s3cr3t, got %q", plaintext)
	}

	second, err := writer.Encrypt("s3cr3t", "pw1")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}
	if second == token {
		t.Fatal("expected fresh salt and nonce per token")
	}
}

func TestAEADCipherRejectsMalformedTokens(t *testing.T) {
	t.Parallel()

	cipher := newTestCipher(t)
	valid, err := cipher.Encrypt("s3cr3t", "pw1")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(valid)
	if err != nil {
		t.Fatalf("failed to decode token: %v", err)
	}

	tamperedCiphertext := append([]byte(nil), raw...)
	tamperedCiphertext[len(tamperedCiphertext)-1] ^= 0x01

	tamperedHeader := append([]byte(nil), raw...)
	tamperedHeader[1+4+4+1] ^= 0x01

	hugeMemory := append([]byte(nil), raw...)
	hugeMemory[5], hugeMemory[6], hugeMemory[7], hugeMemory[8] = 0xff, 0xff, 0xff, 0xff

	badVersion := append([]byte(nil), raw...)
	badVersion[0] = 9

	testCases := []struct {
		name  string
		token string
	}{
		{name: "not base64", token: "%%%not-base64%%%"},
		{name: "empty", token: ""},
		{name: "truncated", token: base64.StdEncoding.EncodeToString(raw[:headerLengthBytes-1])},
		{name: "tampered ciphertext", token: base64.StdEncoding.EncodeToString(tamperedCiphertext)},
		{name: "tampered salt", token: base64.StdEncoding.EncodeToString(tamperedHeader)},
		{name: "oversized kdf memory", token: base64.StdEncoding.EncodeToString(hugeMemory)},
		{name: "unknown version", token: base64.StdEncoding.EncodeToString(badVersion)},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := cipher.Decrypt(testCase.token, "pw1")
			assertCategory(t, err, faults.DecryptionError)
		})
	}
}

func TestAEADCipherRefusesCostlyHeadersBeforeDerivation(t *testing.T) {
	t.Parallel()

	cipher := newTestCipher(t)
	valid, err := cipher.Encrypt("s3cr3t", "pw1")
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(valid)
	if err != nil {
		t.Fatalf("failed to decode token: %v", err)
	}

	withCost := func(timeCost uint32, memory uint32) string {
		rewritten := append([]byte(nil), raw...)
		binary.BigEndian.PutUint32(rewritten[1:5], timeCost)
		binary.BigEndian.PutUint32(rewritten[5:9], memory)
		return base64.StdEncoding.EncodeToString(rewritten)
	}

	testCases := []struct {
		name  string
		token string
	}{
		{name: "memory above ceiling", token: withCost(1, config.MaxKDFMemory+1)},
		{name: "time above ceiling", token: withCost(config.MaxKDFTime+1, 1024)},
		{name: "zero threads", token: func() string {
			rewritten := append([]byte(nil), raw...)
			rewritten[9] = 0
			return base64.StdEncoding.EncodeToString(rewritten)
		}()},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			started := time.Now()
			_, err := cipher.Decrypt(testCase.token, "pw1")
			assertCategory(t, err, faults.DecryptionError)
			if elapsed := time.Since(started); elapsed > 2*time.Second {
				t.Fatalf("expected refusal before key derivation, took %s", elapsed)
			}
		})
	}
}

func TestResolveKDFSettingsCeilings(t *testing.T) {
	t.Parallel()

	if _, err := resolveKDFSettings(&config.KDF{Time: config.MaxKDFTime, Memory: config.MaxKDFMemory, Threads: 1}); err != nil {
		t.Fatalf("expected ceiling values to be accepted, got %v", err)
	}

	_, err := resolveKDFSettings(&config.KDF{Memory: config.MaxKDFMemory + 1})
	assertCategory(t, err, faults.ValidationError)

	_, err = resolveKDFSettings(&config.KDF{Time: config.MaxKDFTime + 1})
	assertCategory(t, err, faults.ValidationError)
}

func TestAEADCipherRejectsEmptyPassphrase(t *testing.T) {
	t.Parallel()

	_, err := newTestCipher(t).Encrypt("s3cr3t", "")
	assertCategory(t, err, faults.ValidationError)
}

func TestResolveKDFSettings(t *testing.T) {
	t.Parallel()

	defaults, err := resolveKDFSettings(nil)
	if err != nil {
		t.Fatalf("resolveKDFSettings returned error: %v", err)
	}
	if defaults != (kdfSettings{Time: defaultKDFTime, Memory: defaultKDFMemory, Threads: defaultKDFThreads}) {
		t.Fatalf("unexpected defaults %#v", defaults)
	}

	partial, err := resolveKDFSettings(&config.KDF{Memory: 2048})
	if err != nil {
		t.Fatalf("resolveKDFSettings returned error: %v", err)
	}
	if partial.Memory != 2048 || partial.Time != defaultKDFTime || partial.Threads != defaultKDFThreads {
		t.Fatalf("unexpected partial override %#v", partial)
	}

	_, err = resolveKDFSettings(&config.KDF{Time: -1})
	assertCategory(t, err, faults.ValidationError)

	_, err = resolveKDFSettings(&config.KDF{Threads: 256})
	assertCategory(t, err, faults.ValidationError)
}

func assertCategory(t *testing.T, err error, category faults.ErrorCategory) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %q error, got nil", category)
	}
	if !faults.IsCategory(err, category) {
		t.Fatalf("expected %q error, got %v", category, err)
	}
}
