// Package credential reads secrets from the operating system keyring so the
// store API key does not have to sit in the environment or a config file.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "todolist"

// items maps config keys to keyring item names.
var items = map[string]string{
	"store.key": "store-key",
}

// openKeyring returns a configured keyring instance.
var openKeyring = func() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
		},
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Lookup returns the secret for a config key such as "store.key". A key
// with no keyring item, or a machine without a usable keyring, yields "".
func Lookup(key string) (string, error) {
	name, ok := items[key]
	if !ok {
		return "", nil
	}

	ring, err := openKeyring()
	if errors.Is(err, keyring.ErrNoAvailImpl) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	item, err := ring.Get(name)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", name, err)
	}

	return string(item.Data), nil
}
