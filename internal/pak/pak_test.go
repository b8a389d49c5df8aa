package pak

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteFile("FSD/Content/Mods/Example.uasset", bytes.Repeat([]byte("hello"), 20000)))
	require.NoError(t, w.WriteFile("FSD/Content/Mods/Example.uexp", []byte("tail data")))
	require.NoError(t, w.Finish())

	r, err := Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Equal(t, Version11, r.Version())
	require.Equal(t, mountPoint, r.MountPoint())

	files := r.Files()
	require.Len(t, files, 2)

	data, err := r.Get("FSD/Content/Mods/Example.uexp")
	require.NoError(t, err)
	require.Equal(t, []byte("tail data"), data)

	big, err := r.Get("fsd/content/mods/example.uasset")
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte("hello"), 20000), big)
}

func TestWriteFileRejectsDuplicatePath(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteFile("a/b.uasset", []byte("x")))
	err := w.WriteFile("A/B.uasset", []byte("y"))
	require.Error(t, err)
}

func TestOpenAcceptsWriterOutputWithoutDuplicates(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteFile("a.uasset", []byte("x")))
	require.NoError(t, w.Finish())

	// Can't easily forge a duplicate via the writer (it rejects it), so
	// this test documents the invariant exercised above instead: opening
	// a legitimately-written archive never reports duplicates.
	r, err := Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, r.Files(), 1)
}
