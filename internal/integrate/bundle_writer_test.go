package integrate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AssemblyStorm/mint/internal/pak"
)

func TestPathTrieNormalizeMatchesBaseGameCasing(t *testing.T) {
	trie := buildPathTrie([]string{"FSD/Content/Mods/Example.uasset"})

	require.Equal(t, "FSD/Content/Mods/Example.uasset", trie.normalize("fsd/CONTENT/mods/example.uasset"))
}

func TestPathTrieNormalizeFallsBackForUnknownPath(t *testing.T) {
	trie := buildPathTrie([]string{"FSD/Content/Mods/Example.uasset"})

	require.Equal(t, "FSD/Content/NewMod/Thing.uasset", trie.normalize("FSD/Content/NewMod/Thing.uasset"))
}

func TestPathTrieNormalizeFallsBackPartway(t *testing.T) {
	// "FSD/Content" is known, but "NewMod" under it is not; normalize
	// should fix up the known prefix and leave the rest as supplied.
	trie := buildPathTrie([]string{"FSD/Content/Mods/Example.uasset"})

	require.Equal(t, "FSD/Content/newmod/thing.uasset", trie.normalize("fsd/content/newmod/thing.uasset"))
}

func TestBundleWriterWriteFileNormalizesPath(t *testing.T) {
	var buf bytes.Buffer
	bw := newBundleWriter(&buf, []string{"FSD/Content/Existing.uasset"})

	require.NoError(t, bw.writeFile("fsd/CONTENT/existing.uasset", []byte("payload")))
	require.NoError(t, bw.finish())

	r, err := pak.Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	data, err := r.Get("FSD/Content/Existing.uasset")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)

	orig, ok := r.OriginalPath("fsd/content/existing.uasset")
	require.True(t, ok)
	require.Equal(t, "FSD/Content/Existing.uasset", orig)
}
