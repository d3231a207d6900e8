package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/relloyd/geniepipe/constants"
)

// EnvVarConfigKey optionally replaces the built-in key that seals config files. It must be 32 bytes long.
const EnvVarConfigKey = constants.EnvVarPrefix + "_CONFIG_KEY"

var builtInKey = []byte("gp/6Qm!e2r#Vd9sTx@4Lw$Kz8hNc1uFy")

// sealedFile keeps a byte payload on disk encrypted with AES-GCM and base64 encoded.
// Workspace tokens and warehouse passwords live in these files so they are written 0600.
type sealedFile struct {
	path string
}

func newSealedFile(fullPath string) *sealedFile {
	return &sealedFile{path: fullPath}
}

func sealKey() ([]byte, error) {
	k := os.Getenv(EnvVarConfigKey)
	if k == "" {
		return builtInKey, nil
	}
	if len(k) != 32 {
		return nil, errors.Errorf("%v must be 32 bytes long, got %v", EnvVarConfigKey, len(k))
	}
	return []byte(k), nil
}

func (s *sealedFile) exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// read returns the plain text or FileNotFoundError.
func (s *sealedFile) read() ([]byte, error) {
	if !s.exists() {
		return nil, FileNotFoundError{s.path}
	}
	b64, err := ioutil.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file %q", s.path)
	}
	sealed, err := base64.StdEncoding.DecodeString(string(b64))
	if err != nil {
		return nil, errors.Wrapf(err, "config file %q is not base64 encoded", s.path)
	}
	key, err := sealKey()
	if err != nil {
		return nil, err
	}
	plain, err := unseal(key, sealed)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decrypt config file %q (check %v)", s.path, EnvVarConfigKey)
	}
	return plain, nil
}

// write replaces the file via a temp file and rename so a failed write never truncates saved connections.
func (s *sealedFile) write(plain []byte) error {
	key, err := sealKey()
	if err != nil {
		return err
	}
	sealed, err := seal(key, plain)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err = os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "error creating config directory %q", dir)
	}
	tmp, err := ioutil.TempFile(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return errors.Wrap(err, "error creating temp config file")
	}
	defer os.Remove(tmp.Name()) // no-op after rename
	if _, err = tmp.WriteString(base64.StdEncoding.EncodeToString(sealed)); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "error writing temp config file")
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	return errors.Wrapf(os.Rename(tmp.Name(), s.path), "error saving config file %q", s.path)
}

// seal prefixes the cipher text with its random nonce.
func seal(key []byte, plain []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func unseal(key []byte, sealed []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	n := gcm.NonceSize()
	if len(sealed) < n {
		return nil, errors.New("encrypted text is too short")
	}
	return gcm.Open(nil, sealed[:n], sealed[n:], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
