package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// lightweight per-user secret store (file, 0600) with AES-GCM obfuscation.
// Not a replacement for OS keychains but avoids plain-text config.

const fileName = "keys.json"

// ErrNotFound is returned when no key is stored for a provider.
var ErrNotFound = errors.New("key not found")

type secretFile struct {
	Keys map[string]string `json:"keys"` // provider -> base64(ciphertext)
}

// Store keeps provider API keys in a single file under dir.
type Store struct {
	dir  string
	seed string
}

// NewStore returns a store rooted at dir. An empty dir means the user config
// directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, errors.Wrap(err, "locate config dir")
		}
		dir = filepath.Join(base, "safeflow")
	}
	return &Store{dir: dir, seed: fmt.Sprintf("safeflow-%s-%s", runtime.GOOS, os.Getenv("USER"))}, nil
}

// Path reports the backing file.
func (s *Store) Path() string { return filepath.Join(s.dir, fileName) }

func (s *Store) Put(provider, key string) error {
	if provider = norm(provider); provider == "" {
		return errors.New("provider required")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("key required")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil { // restrict directory
		return err
	}
	sf, err := load(s.Path())
	if err != nil {
		return err
	}
	if sf.Keys == nil {
		sf.Keys = map[string]string{}
	}
	ct, err := s.encrypt([]byte(key))
	if err != nil {
		return err
	}
	sf.Keys[provider] = base64.StdEncoding.EncodeToString(ct)
	return save(s.Path(), sf)
}

func (s *Store) Get(provider string) (string, error) {
	if provider = norm(provider); provider == "" {
		return "", errors.New("provider required")
	}
	sf, err := load(s.Path())
	if err != nil {
		return "", err
	}
	enc, ok := sf.Keys[provider]
	if !ok {
		return "", ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", errors.Wrap(err, "decode key")
	}
	pt, err := s.decrypt(raw)
	if err != nil {
		return "", errors.Wrap(err, "decrypt key")
	}
	return string(pt), nil
}

// Delete removes a provider key. Deleting a missing key is not an error.
func (s *Store) Delete(provider string) error {
	if provider = norm(provider); provider == "" {
		return errors.New("provider required")
	}
	sf, err := load(s.Path())
	if err != nil {
		return err
	}
	if _, ok := sf.Keys[provider]; !ok {
		return nil
	}
	delete(sf.Keys, provider)
	return save(s.Path(), sf)
}

func load(path string) (secretFile, error) {
	var sf secretFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return secretFile{}, nil
		}
		return sf, err
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return sf, errors.Wrap(err, "parse secrets file")
	}
	return sf, nil
}

func save(path string, sf secretFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func (s *Store) gcm() (cipher.AEAD, error) {
	key := sha256.Sum256([]byte(s.seed))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (s *Store) encrypt(plain []byte) ([]byte, error) {
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func (s *Store) decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	body := ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
