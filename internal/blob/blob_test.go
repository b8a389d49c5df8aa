package blob

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func zipOf(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractPakBarePakReturnedUnchanged(t *testing.T) {
	data := []byte("not a zip at all, just raw pak bytes")
	out, err := ExtractPak(data, "mod.pak")
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestExtractPakFromZip(t *testing.T) {
	pak := []byte("pak contents")
	z := zipOf(t, map[string][]byte{"readme.txt": []byte("hi"), "Mod.PAK": pak})
	out, err := ExtractPak(z, "mod.zip")
	require.NoError(t, err)
	require.Equal(t, pak, out)
}

func TestExtractPakEmptyZip(t *testing.T) {
	z := zipOf(t, nil)
	_, err := ExtractPak(z, "mod.zip")
	require.Error(t, err)
}

func TestExtractPakZipWithNoPak(t *testing.T) {
	z := zipOf(t, map[string][]byte{"readme.txt": []byte("hi")})
	_, err := ExtractPak(z, "mod.zip")
	require.Error(t, err)
}
