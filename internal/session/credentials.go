package session

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

const (
	// credentialsMagicHeader identifies an encrypted session file.
	credentialsMagicHeader = "YGOSESS1"

	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32 // 256 bits for AES-256

	saltLength = 32
)

// savedCookie is the on-disk shape of one session cookie. Only the fields
// needed to replay the cookie are kept.
type savedCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Path   string `json:"path"`
	Domain string `json:"domain"`
}

// deriveKey derives an AES key from a passphrase using Argon2id.
func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

// SaveCookies encrypts the session cookies with the passphrase and writes
// them to path, so a later run can resume the session without a login.
func SaveCookies(path, password string, cookies []*http.Cookie) error {
	if password == "" {
		return fmt.Errorf("passphrase required to save session")
	}

	saved := make([]savedCookie, 0, len(cookies))
	for _, c := range cookies {
		saved = append(saved, savedCookie{Name: c.Name, Value: c.Value, Path: c.Path, Domain: c.Domain})
	}
	plaintext, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(credentialsMagicHeader)+len(salt)+len(nonce)+len(ciphertext))
	out = append(out, credentialsMagicHeader...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// LoadCookies reads and decrypts a session file written by SaveCookies. A
// wrong passphrase fails GCM authentication and is reported as such.
func LoadCookies(path, password string) ([]*http.Cookie, error) {
	if password == "" {
		return nil, fmt.Errorf("passphrase required to load session")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if !bytes.HasPrefix(data, []byte(credentialsMagicHeader)) {
		return nil, fmt.Errorf("not a session file")
	}
	data = data[len(credentialsMagicHeader):]

	if len(data) < saltLength {
		return nil, fmt.Errorf("session file truncated")
	}
	salt := data[:saltLength]
	data = data[saltLength:]

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, fmt.Errorf("session file truncated")
	}
	nonce := data[:nonceSize]
	ciphertext := data[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt session (wrong passphrase?): %w", err)
	}

	var saved []savedCookie
	if err := json.Unmarshal(plaintext, &saved); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(saved))
	for _, s := range saved {
		cookies = append(cookies, &http.Cookie{Name: s.Name, Value: s.Value, Path: s.Path, Domain: s.Domain})
	}
	return cookies, nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := deriveKey(password, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
