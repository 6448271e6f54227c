package ioxport

import (
	"fmt"

	"github.com/orneryd/graphrecords/pkg/encryption"
)

// NewFieldEncryptor builds a password-derived Encryptor for protecting
// named attribute values in an export, using the teacher's
// pkg/encryption.Encryptor (AES-256-GCM, PBKDF2-derived key) unchanged.
func NewFieldEncryptor(password string) (*encryption.Encryptor, error) {
	cfg := encryption.DefaultConfig()
	enc, err := encryption.NewEncryptorWithPassword(password, cfg)
	if err != nil {
		return nil, fmt.Errorf("ioxport: building field encryptor: %w", err)
	}
	return enc, nil
}

// EncryptFields replaces, in place, every named field present in props with
// its encryption.Encryptor.EncryptField output — for exporting sensitive
// attributes (PHI/PII-tagged groups) without writing plaintext to disk.
func EncryptFields(props map[string]any, fields []string, enc *encryption.Encryptor) error {
	for _, name := range fields {
		raw, ok := props[name]
		if !ok {
			continue
		}
		encrypted, err := enc.EncryptField(fmt.Sprintf("%v", raw))
		if err != nil {
			return fmt.Errorf("ioxport: encrypting field %q: %w", name, err)
		}
		props[name] = encrypted
	}
	return nil
}

// DecryptFields reverses EncryptFields on an imported properties map,
// leaving any field not in enc's "enc:vN:..." format untouched.
func DecryptFields(props map[string]any, fields []string, enc *encryption.Encryptor) error {
	for _, name := range fields {
		raw, ok := props[name].(string)
		if !ok {
			continue
		}
		decrypted, err := enc.DecryptField(raw)
		if err != nil {
			return fmt.Errorf("ioxport: decrypting field %q: %w", name, err)
		}
		props[name] = decrypted
	}
	return nil
}

// SensitiveFields returns the teacher's default PHI field-name list
// (encryption.DefaultPHIFields), a reasonable starting point for
// EncryptFields/DecryptFields when the caller has not curated its own.
func SensitiveFields() []string {
	return encryption.DefaultPHIFields()
}
