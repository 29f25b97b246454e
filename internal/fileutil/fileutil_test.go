package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/certsmith/internal/fileutil"
)

func TestSetWriteAndDiscard(t *testing.T) {
	dir := t.TempDir()
	set := fileutil.NewSet(dir)

	keyPath, err := set.Write("svc-test.key", []byte("key material"), 0o600)
	require.NoError(t, err)
	certPath, err := set.Write("svc-test.crt", []byte("cert material"), 0o644)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "svc-test.key"), keyPath)
	assert.Equal(t, []string{keyPath, certPath}, set.Written())

	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	set.Discard()
	assert.Empty(t, set.Written())
	_, err = os.Stat(keyPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(certPath)
	assert.True(t, os.IsNotExist(err))
}

func TestSetWrite_MissingDirectory(t *testing.T) {
	set := fileutil.NewSet(filepath.Join(t.TempDir(), "nope"))
	_, err := set.Write("x.txt", []byte("x"), 0o644)
	assert.Error(t, err)
}
