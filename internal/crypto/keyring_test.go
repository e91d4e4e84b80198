package crypto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func newTestKeyring(env map[string]string) *systemKeyring {
	keyring.MockInit()
	return &systemKeyring{getenv: func(k string) string { return env[k] }}
}

func TestKeyring_SetGetDelete(t *testing.T) {
	k := newTestKeyring(nil)

	_, err := k.GetKey()
	assert.True(t, errors.Is(err, ErrNoKey))

	assert.Error(t, k.SetKey(""))
	require.NoError(t, k.SetKey("s3cret"))

	key, err := k.GetKey()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", key)

	require.NoError(t, k.DeleteKey())
	require.NoError(t, k.DeleteKey())

	_, err = k.GetKey()
	assert.True(t, errors.Is(err, ErrNoKey))
}

func TestKeyring_EnvironmentWins(t *testing.T) {
	k := newTestKeyring(map[string]string{EnvKey: "from-env"})
	require.NoError(t, k.SetKey("from-keyring"))

	key, err := k.GetKey()
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
	assert.True(t, k.IsAvailable())
}
