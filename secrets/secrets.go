package secrets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"gopkg.in/yaml.v3"

	"github.com/auth0/go-edge-context/core"
)

var (
	// ErrSecretNotFound is returned for names the store does not hold.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrNotVersioned is returned when a secret is not of type "versioned".
	ErrNotVersioned = errors.New("secret is not versioned")
)

// VersionedSecret holds the versions of a rotating secret. Current is
// required; Previous and Next are optional.
type VersionedSecret struct {
	Current  []byte
	Previous []byte
	Next     []byte
}

// AllVersions returns the present versions, current first, then previous,
// then next.
func (v VersionedSecret) AllVersions() [][]byte {
	versions := [][]byte{v.Current}
	if v.Previous != nil {
		versions = append(versions, v.Previous)
	}
	if v.Next != nil {
		versions = append(versions, v.Next)
	}
	return versions
}

// Store serves versioned public keys from an in-memory copy of a secrets
// document. It implements core.KeySource and is safe for concurrent use.
type Store struct {
	path string

	mu   sync.RWMutex
	keys map[string]core.PublicKeySet
}

var _ core.KeySource = (*Store)(nil)

// NewStore builds a store from already loaded secrets. Every version must be
// a PEM encoded public key.
func NewStore(secrets map[string]VersionedSecret) (*Store, error) {
	keys, err := parseKeys(secrets)
	if err != nil {
		return nil, err
	}
	return &Store{keys: keys}, nil
}

// LoadFile reads a secrets document (JSON or YAML) from path.
//
//	{
//	  "secrets": {
//	    "secret/authentication/public-key": {
//	      "type": "versioned",
//	      "current": "-----BEGIN PUBLIC KEY-----\n...",
//	      "previous": "-----BEGIN PUBLIC KEY-----\n..."
//	    }
//	  }
//	}
func LoadFile(path string) (*Store, error) {
	keys, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, keys: keys}, nil
}

// Parse builds a store from a secrets document held in memory.
func Parse(data []byte) (*Store, error) {
	secrets, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	return NewStore(secrets)
}

// Reload re-reads the file the store was loaded from. On error the
// previously loaded keys stay in place.
func (s *Store) Reload() error {
	if s.path == "" {
		return errors.New("store was not loaded from a file")
	}

	keys, err := loadFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.keys = keys
	s.mu.Unlock()
	return nil
}

// GetVersioned returns the keys stored under name, current first.
func (s *Store) GetVersioned(_ context.Context, name string) (core.PublicKeySet, error) {
	s.mu.RLock()
	keys, ok := s.keys[name]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}

	return append(core.PublicKeySet(nil), keys...), nil
}

func loadFile(path string) (map[string]core.PublicKeySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read secrets file: %w", err)
	}

	secrets, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return parseKeys(secrets)
}

type document struct {
	Secrets map[string]secretEntry `yaml:"secrets"`
}

type secretEntry struct {
	Type     string  `yaml:"type"`
	Encoding string  `yaml:"encoding"`
	Current  *string `yaml:"current"`
	Previous *string `yaml:"previous"`
	Next     *string `yaml:"next"`
}

func parseDocument(data []byte) (map[string]VersionedSecret, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not parse secrets document: %w", err)
	}

	secrets := make(map[string]VersionedSecret, len(doc.Secrets))
	for name, entry := range doc.Secrets {
		if entry.Type != "versioned" {
			continue
		}

		secret, err := entry.decode()
		if err != nil {
			return nil, fmt.Errorf("secret %s: %w", name, err)
		}
		secrets[name] = secret
	}

	return secrets, nil
}

func (e secretEntry) decode() (VersionedSecret, error) {
	if e.Current == nil {
		return VersionedSecret{}, errors.New("current version is required")
	}

	var secret VersionedSecret
	for _, field := range []struct {
		value *string
		dst   *[]byte
	}{
		{e.Current, &secret.Current},
		{e.Previous, &secret.Previous},
		{e.Next, &secret.Next},
	} {
		if field.value == nil {
			continue
		}
		decoded, err := decodeValue(*field.value, e.Encoding)
		if err != nil {
			return VersionedSecret{}, err
		}
		*field.dst = decoded
	}

	return secret, nil
}

func decodeValue(value, encoding string) ([]byte, error) {
	switch encoding {
	case "", "identity":
		return []byte(value), nil
	case "base64":
		decoded, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 value: %w", err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

func parseKeys(secrets map[string]VersionedSecret) (map[string]core.PublicKeySet, error) {
	keys := make(map[string]core.PublicKeySet, len(secrets))
	for name, secret := range secrets {
		if secret.Current == nil {
			return nil, fmt.Errorf("secret %s: current version is required", name)
		}

		set := make(core.PublicKeySet, 0, 3)
		for i, version := range secret.AllVersions() {
			key, err := jwk.ParseKey(version, jwk.WithPEM(true))
			if err != nil {
				return nil, fmt.Errorf("secret %s: version %d is not a PEM public key: %w", name, i, err)
			}
			set = append(set, key)
		}
		keys[name] = set
	}
	return keys, nil
}
