package credential

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/crmarques/credstore/faults"
)

// Record is one stored credential. The secret is only ever held in its
// encrypted token form.
type Record struct {
	Name            string
	Account         string
	EncryptedSecret string
}

type recordDocument struct {
	Name            string `json:"name"`
	Account         string `json:"account"`
	EncryptedSecret string `json:"encrypted_secret"`
}

// legacyRecordDocument matches files written before the secret field was
// renamed.
type legacyRecordDocument struct {
	Name            *string `json:"name"`
	Account         *string `json:"account"`
	EncryptedSecret *string `json:"encrypted_secret"`
	LegacySecret    *string `json:"encrypted_password"`
}

func New(cipher Cipher, name string, account string, password string, passphrase string) (Record, error) {
	if cipher == nil {
		return Record{}, faults.NewTypedError(faults.InternalError, "credential cipher must not be nil", nil)
	}
	if strings.TrimSpace(name) == "" {
		return Record{}, faults.NewTypedError(faults.ValidationError, "credential name must not be empty", nil)
	}
	if account == "" {
		return Record{}, faults.NewTypedError(faults.ValidationError, "credential account must not be empty", nil)
	}

	token, err := cipher.Encrypt(password, passphrase)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Name:            name,
		Account:         account,
		EncryptedSecret: token,
	}, nil
}

func (r Record) DecryptSecret(cipher Cipher, passphrase string) (string, error) {
	if cipher == nil {
		return "", faults.NewTypedError(faults.InternalError, "credential cipher must not be nil", nil)
	}
	return cipher.Decrypt(r.EncryptedSecret, passphrase)
}

func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return parseError("credential record name is missing", nil)
	case r.Account == "":
		return parseError("credential record account is missing", nil)
	case strings.TrimSpace(r.EncryptedSecret) == "":
		return parseError("credential record encrypted secret is missing", nil)
	default:
		return nil
	}
}

func (r Record) Marshal() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	encoded, err := json.MarshalIndent(recordDocument(r), "", "  ")
	if err != nil {
		return nil, faults.NewTypedError(faults.InternalError, "failed to encode credential record", err)
	}
	return append(encoded, '\n'), nil
}

func Unmarshal(data []byte) (Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Record{}, parseError("credential record is empty", nil)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var document legacyRecordDocument
	if err := decoder.Decode(&document); err != nil {
		return Record{}, parseError("invalid credential record", err)
	}
	if decoder.More() {
		return Record{}, parseError("credential record has trailing content", nil)
	}

	if document.EncryptedSecret != nil && document.LegacySecret != nil {
		return Record{}, parseError("credential record defines both encrypted_secret and encrypted_password", nil)
	}

	record := Record{
		Name:            derefString(document.Name),
		Account:         derefString(document.Account),
		EncryptedSecret: derefString(document.EncryptedSecret),
	}
	if document.LegacySecret != nil {
		record.EncryptedSecret = *document.LegacySecret
	}

	if err := record.Validate(); err != nil {
		return Record{}, err
	}
	return record, nil
}

func (r Record) String() string {
	return fmt.Sprintf("credential %q (account %q)", r.Name, r.Account)
}

func (r Record) GoString() string {
	return fmt.Sprintf("credential.Record{Name:%q, Account:%q, EncryptedSecret:<%d bytes>}", r.Name, r.Account, len(r.EncryptedSecret))
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func parseError(message string, cause error) error {
	return faults.NewTypedError(faults.ParseError, message, cause)
}
