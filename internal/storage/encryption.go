package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"
)

const (
	// EncryptedBackupExt is appended to the name of an encrypted backup.
	EncryptedBackupExt = ".enc"

	encryptionMagic = "CDEXENC1"

	// Argon2id defaults (RFC 9106, second recommended option).
	defaultArgon2Time    = 3
	defaultArgon2Memory  = 64 * 1024
	defaultArgon2Threads = 4
	argon2KeyLen         = 32

	saltLength = 16

	// magic, time, memory, threads, salt
	encryptionHeaderLen = len(encryptionMagic) + 4 + 4 + 1 + saltLength
)

// ErrPasswordRequired is returned when an encrypted backup is restored
// without a password.
var ErrPasswordRequired = errors.New("backup is encrypted and no password was given")

// EncryptionConfig selects the password and Argon2id cost of encrypted
// backups. The cost parameters are written into each file, so a backup
// decrypts regardless of the settings in force when it is restored.
type EncryptionConfig struct {
	Password string

	Argon2Time    uint32
	Argon2Memory  uint32 // KiB
	Argon2Threads uint8
}

// DefaultEncryptionConfig returns an EncryptionConfig with the default
// Argon2id cost.
func DefaultEncryptionConfig(password string) *EncryptionConfig {
	return &EncryptionConfig{
		Password:      password,
		Argon2Time:    defaultArgon2Time,
		Argon2Memory:  defaultArgon2Memory,
		Argon2Threads: defaultArgon2Threads,
	}
}

func deriveKey(password string, salt []byte, iterations, memory uint32, threads uint8) []byte {
	return argon2.IDKey([]byte(password), salt, iterations, memory, threads, argon2KeyLen)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// EncryptData seals plaintext with AES-256-GCM under an Argon2id key.
// The result is header || nonce || ciphertext; the header carries the
// magic, the Argon2id cost and the salt, and is authenticated as
// additional data.
func EncryptData(plaintext []byte, config *EncryptionConfig) ([]byte, error) {
	if config == nil || config.Password == "" {
		return nil, errors.New("encryption requires a password")
	}
	cfg := *config
	if cfg.Argon2Time == 0 {
		cfg.Argon2Time = defaultArgon2Time
	}
	if cfg.Argon2Memory == 0 {
		cfg.Argon2Memory = defaultArgon2Memory
	}
	if cfg.Argon2Threads == 0 {
		cfg.Argon2Threads = defaultArgon2Threads
	}

	header := make([]byte, 0, encryptionHeaderLen)
	header = append(header, encryptionMagic...)
	header = binary.BigEndian.AppendUint32(header, cfg.Argon2Time)
	header = binary.BigEndian.AppendUint32(header, cfg.Argon2Memory)
	header = append(header, cfg.Argon2Threads)
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	header = append(header, salt...)

	gcm, err := newGCM(deriveKey(cfg.Password, salt, cfg.Argon2Time, cfg.Argon2Memory, cfg.Argon2Threads))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(header)+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, header...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, header), nil
}

// DecryptData opens data written by EncryptData.
func DecryptData(data []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !hasEncryptionMagic(data) || len(data) < encryptionHeaderLen {
		return nil, errors.New("data is not an encrypted backup")
	}

	header := data[:encryptionHeaderLen]
	rest := header[len(encryptionMagic):]
	iterations := binary.BigEndian.Uint32(rest[0:4])
	memory := binary.BigEndian.Uint32(rest[4:8])
	threads := rest[8]
	salt := rest[9:]
	if iterations == 0 || memory == 0 || threads == 0 {
		return nil, errors.New("encrypted backup has an invalid header")
	}

	gcm, err := newGCM(deriveKey(password, salt, iterations, memory, threads))
	if err != nil {
		return nil, err
	}
	body := data[encryptionHeaderLen:]
	if len(body) < gcm.NonceSize()+gcm.Overhead() {
		return nil, errors.New("encrypted backup is truncated")
	}
	nonce, ciphertext := body[:gcm.NonceSize()], body[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, header)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong password or corrupted backup): %w", err)
	}
	return plaintext, nil
}

// EncryptFile writes an encrypted copy of src to dst.
func EncryptFile(src, dst string, config *EncryptionConfig) error {
	plaintext, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	encrypted, err := EncryptData(plaintext, config)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, encrypted, 0o600)
}

// DecryptFile writes the decrypted contents of src to dst.
func DecryptFile(src, dst, password string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	plaintext, err := DecryptData(data, password)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, plaintext, 0o600)
}

// IsEncrypted reports whether the file at path starts with the encrypted
// backup header.
func IsEncrypted(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, len(encryptionMagic))
	n, _ := f.Read(head)
	return hasEncryptionMagic(head[:n]), nil
}

func hasEncryptionMagic(data []byte) bool {
	return bytes.HasPrefix(data, []byte(encryptionMagic))
}
