// Package encryption provides data-at-rest encryption for sensitive
// attribute values: AES-256-GCM authenticated encryption with a PBKDF2
// password-derived key and versioned key storage for transparent decrypt.
//
// Trimmed from the teacher's original encryption.go to the surface
// pkg/ioxport actually drives: a single password-derived key (no KMS
// integration, no key rotation schedule, no secure-wipe helpers) — those
// concerns have no caller in graphrecords' snapshot export/import path.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// Key version header size in encrypted data.
const versionHeaderSize = 4

// Errors
var (
	ErrInvalidKey       = errors.New("encryption: invalid key length (must be 32 bytes)")
	ErrInvalidData      = errors.New("encryption: invalid encrypted data")
	ErrDecryptionFailed = errors.New("encryption: decryption failed (authentication error)")
	ErrNoKey            = errors.New("encryption: no encryption key available")
	ErrKeyNotFound      = errors.New("encryption: key version not found")
	ErrKeyExpired       = errors.New("encryption: key has expired")
)

// Key represents an encryption key with metadata.
type Key struct {
	ID        uint32    // Key version ID
	Material  []byte    // 32-byte AES-256 key
	CreatedAt time.Time // When key was created
	ExpiresAt time.Time // When key expires (zero = never)
	Active    bool      // Whether key can be used for new encryption
}

// IsExpired returns true if the key has expired.
func (k *Key) IsExpired() bool {
	if k.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(k.ExpiresAt)
}

// Validate checks if the key is valid for use.
func (k *Key) Validate() error {
	if len(k.Material) != 32 {
		return ErrInvalidKey
	}
	if k.IsExpired() {
		return ErrKeyExpired
	}
	return nil
}

// Config holds encryption configuration.
type Config struct {
	// Whether encryption is enabled.
	Enabled bool

	// Key derivation settings.
	KeyDerivation KeyDerivationConfig
}

// KeyDerivationConfig configures key derivation from password.
type KeyDerivationConfig struct {
	// Salt for key derivation (should be unique per installation).
	Salt []byte

	// PBKDF2 iterations (default: 600000 for OWASP recommendation).
	Iterations int
}

// DefaultConfig returns secure default configuration.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		KeyDerivation: KeyDerivationConfig{
			Iterations: 600000, // OWASP 2023 recommendation
		},
	}
}

// keyManager holds the small set of key versions an Encryptor can
// encrypt/decrypt with. graphrecords only ever derives a single active key
// from a password, so rotation/expiry cleanup has no caller here.
type keyManager struct {
	mu      sync.RWMutex
	keys    map[uint32]*Key
	current uint32
}

func newKeyManager() *keyManager {
	return &keyManager{keys: make(map[uint32]*Key)}
}

// addKey adds a key to the manager.
func (km *keyManager) addKey(key *Key) error {
	if err := key.Validate(); err != nil {
		return err
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	km.keys[key.ID] = key
	if key.Active {
		km.current = key.ID
	}
	return nil
}

// getKey retrieves a key by version ID.
func (km *keyManager) getKey(version uint32) (*Key, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	key, ok := km.keys[version]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

// currentKey returns the current active key for encryption.
func (km *keyManager) currentKey() (*Key, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if km.current == 0 {
		return nil, ErrNoKey
	}

	key, ok := km.keys[km.current]
	if !ok {
		return nil, ErrNoKey
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return key, nil
}

// Encryptor provides AES-256-GCM encryption/decryption for field values,
// keyed by a password-derived key.
type Encryptor struct {
	km      *keyManager
	enabled bool
}

// NewEncryptorWithPassword creates an encryptor with a key derived from
// password using PBKDF2-HMAC-SHA256. The derived key is stored as key
// version 1 and marked active.
//
// config.KeyDerivation.Salt must be unique per installation; the zero value
// falls back to a fixed development salt, which is not appropriate for
// production data.
func NewEncryptorWithPassword(password string, config Config) (*Encryptor, error) {
	if !config.Enabled {
		return &Encryptor{enabled: false}, nil
	}

	salt := config.KeyDerivation.Salt
	if len(salt) == 0 {
		salt = []byte("graphrecords-default-salt-change-me")
	}

	iterations := config.KeyDerivation.Iterations
	if iterations <= 0 {
		iterations = 600000
	}

	material := pbkdf2.Key([]byte(password), salt, iterations, 32, sha256.New)

	km := newKeyManager()
	key := &Key{
		ID:        1,
		Material:  material,
		CreatedAt: time.Now().UTC(),
		Active:    true,
	}
	if err := km.addKey(key); err != nil {
		return nil, err
	}

	return &Encryptor{km: km, enabled: true}, nil
}

// Encrypt encrypts plaintext using AES-256-GCM.
// Returns base64-encoded ciphertext with a key version header.
func (e *Encryptor) Encrypt(plaintext []byte) (string, error) {
	if !e.enabled {
		return base64.StdEncoding.EncodeToString(plaintext), nil
	}

	key, err := e.km.currentKey()
	if err != nil {
		return "", err
	}

	ciphertext, err := encrypt(plaintext, key)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decrypts base64-encoded ciphertext.
func (e *Encryptor) Decrypt(ciphertext string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, ErrInvalidData
	}

	if !e.enabled {
		return data, nil
	}

	if len(data) < versionHeaderSize {
		return nil, ErrInvalidData
	}

	version := binary.BigEndian.Uint32(data[:versionHeaderSize])

	key, err := e.km.getKey(version)
	if err != nil {
		return nil, err
	}

	return decrypt(data[versionHeaderSize:], key)
}

// EncryptString encrypts a string and returns the base64 result.
func (e *Encryptor) EncryptString(plaintext string) (string, error) {
	return e.Encrypt([]byte(plaintext))
}

// DecryptString decrypts base64 ciphertext and returns the original string.
func (e *Encryptor) DecryptString(ciphertext string) (string, error) {
	data, err := e.Decrypt(ciphertext)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// EncryptField encrypts a sensitive field value.
// Returns format: "enc:v{version}:{base64_ciphertext}".
func (e *Encryptor) EncryptField(value string) (string, error) {
	if !e.enabled {
		return value, nil
	}

	ciphertext, err := e.EncryptString(value)
	if err != nil {
		return "", err
	}

	key, _ := e.km.currentKey()
	return fmt.Sprintf("enc:v%d:%s", key.ID, ciphertext), nil
}

// DecryptField decrypts a field value encrypted by EncryptField. Values not
// in the "enc:vN:..." format are returned unchanged.
func (e *Encryptor) DecryptField(encrypted string) (string, error) {
	if !e.enabled {
		return encrypted, nil
	}

	if len(encrypted) < 6 || encrypted[:4] != "enc:" {
		return encrypted, nil
	}

	var version uint32
	var ciphertext string
	_, err := fmt.Sscanf(encrypted, "enc:v%d:%s", &version, &ciphertext)
	if err != nil {
		return encrypted, nil
	}

	return e.DecryptString(ciphertext)
}

// encrypt performs AES-256-GCM encryption with a key version header.
func encrypt(plaintext []byte, key *Key) ([]byte, error) {
	block, err := aes.NewCipher(key.Material)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	// Format: [4 bytes version][nonce][ciphertext]
	result := make([]byte, versionHeaderSize+len(nonce)+len(ciphertext))
	binary.BigEndian.PutUint32(result[:versionHeaderSize], key.ID)
	copy(result[versionHeaderSize:], nonce)
	copy(result[versionHeaderSize+len(nonce):], ciphertext)

	return result, nil
}

// decrypt performs AES-256-GCM decryption (without the version header).
func decrypt(data []byte, key *Key) ([]byte, error) {
	block, err := aes.NewCipher(key.Material)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, ErrInvalidData
	}

	nonce := data[:nonceSize]
	ciphertext := data[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

// DefaultPHIFields returns commonly required encrypted field names for
// compliance (HIPAA PHI, PII, financial) — a reasonable starting point for
// pkg/ioxport's EncryptFields/DecryptFields when the caller has not curated
// its own field list.
func DefaultPHIFields() []string {
	return []string{
		// HIPAA PHI fields
		"ssn", "social_security_number",
		"mrn", "medical_record_number",
		"diagnosis", "treatment", "medication",
		"dob", "date_of_birth", "birthdate",

		// PII fields
		"email", "email_address",
		"phone", "phone_number", "mobile",
		"address", "street_address", "postal_code", "zip_code",
		"credit_card", "card_number", "cvv",
		"password", "password_hash",
		"api_key", "secret_key", "access_token",

		// Financial
		"account_number", "routing_number", "bank_account",
		"salary", "income",
	}
}
