package credential

import (
	"fmt"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withRing(t *testing.T, ring keyring.Keyring, err error) {
	t.Helper()
	orig := openKeyring
	openKeyring = func() (keyring.Keyring, error) { return ring, err }
	t.Cleanup(func() { openKeyring = orig })
}

func TestLookup(t *testing.T) {
	withRing(t, keyring.NewArrayKeyring([]keyring.Item{
		{Key: "store-key", Data: []byte("s3cret")},
	}), nil)

	got, err := Lookup("store.key")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	got, err = Lookup("store.url")
	require.NoError(t, err)
	assert.Empty(t, got, "only secret settings are looked up")
}

func TestLookup_Missing(t *testing.T) {
	withRing(t, keyring.NewArrayKeyring(nil), nil)

	got, err := Lookup("store.key")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLookup_NoKeyring(t *testing.T) {
	withRing(t, nil, fmt.Errorf("opening keyring: %w", keyring.ErrNoAvailImpl))

	got, err := Lookup("store.key")
	require.NoError(t, err)
	assert.Empty(t, got)
}
