package auth

import (
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "colecta"
	keyringUser    = "session"

	fallbackDirName  = ".colecta"
	fallbackFileName = ".session"
)

// credentialStore abstracts where the serialized session lives.
type credentialStore interface {
	load() ([]byte, error)
	save(data []byte) error
	delete() error
}

// keyringStore keeps the session in the system keyring, degrading to a
// file under ~/.colecta on headless systems where no keyring is reachable.
type keyringStore struct {
	fallback bool
}

func newKeyringStore() *keyringStore {
	// Probe with a throwaway entry; dbus/secret-service is simply absent on
	// most servers and CI machines.
	const probe = "colecta-keyring-probe"
	if err := keyring.Set(keyringService, probe, "ok"); err != nil {
		return &keyringStore{fallback: true}
	}
	_ = keyring.Delete(keyringService, probe)
	return &keyringStore{}
}

func (k *keyringStore) load() ([]byte, error) {
	if k.fallback {
		return fallbackFile{}.load()
	}
	value, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (k *keyringStore) save(data []byte) error {
	if k.fallback {
		return fallbackFile{}.save(data)
	}
	return keyring.Set(keyringService, keyringUser, string(data))
}

func (k *keyringStore) delete() error {
	if k.fallback {
		return fallbackFile{}.delete()
	}
	err := keyring.Delete(keyringService, keyringUser)
	if err == keyring.ErrNotFound {
		return nil
	}
	return err
}

// fallbackFile stores the session under the user's home directory with
// owner-only permissions.
type fallbackFile struct{}

func (fallbackFile) path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallbackDirName, fallbackFileName), nil
}

func (f fallbackFile) load() ([]byte, error) {
	path, err := f.path()
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (f fallbackFile) save(data []byte) error {
	path, err := f.path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (f fallbackFile) delete() error {
	path, err := f.path()
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// fileStore keeps the session in a fixed directory. Tests point it at a
// temp dir.
type fileStore struct {
	dir string
}

func (f fileStore) load() ([]byte, error) {
	return os.ReadFile(filepath.Join(f.dir, fallbackFileName))
}

func (f fileStore) save(data []byte) error {
	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(f.dir, fallbackFileName), data, 0600)
}

func (f fileStore) delete() error {
	err := os.Remove(filepath.Join(f.dir, fallbackFileName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
