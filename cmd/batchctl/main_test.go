package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloOid = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestParsePointer(t *testing.T) {
	pointer, err := parsePointer(helloOid + ":1024")
	require.NoError(t, err)
	assert.Equal(t, helloOid, pointer.Oid)
	assert.Equal(t, int64(1024), pointer.Size)

	for _, arg := range []string{
		helloOid,
		":5",
		helloOid + ":-1",
		helloOid + ":ten",
		"abc123:5",
		"../../etc/passwd:5",
	} {
		_, err := parsePointer(arg)
		assert.Error(t, err, arg)
	}
}

func TestPointerForFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	pointer, err := pointerForFile(path)
	require.NoError(t, err)

	assert.Equal(t, helloOid, pointer.Oid)
	assert.Equal(t, int64(5), pointer.Size)
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()

	t.Run("it should place a requested object under the output dir", func(t *testing.T) {
		dest, err := outputPath(dir, helloOid, map[string]bool{helloOid: true})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, helloOid), dest)
	})

	t.Run("it should refuse an object that was not requested", func(t *testing.T) {
		_, err := outputPath(dir, "../escaped", map[string]bool{helloOid: true})
		assert.ErrorContains(t, err, "unrequested")
	})

	t.Run("it should refuse a path even when it was requested", func(t *testing.T) {
		for _, oid := range []string{"../escaped", "sub/" + helloOid, ".."} {
			_, err := outputPath(dir, oid, map[string]bool{oid: true})
			assert.Error(t, err, oid)
		}
	})
}
