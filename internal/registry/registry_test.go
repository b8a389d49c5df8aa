package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AssemblyStorm/mint/internal/fname"
)

func newTestRegistry() *Registry {
	names := fname.New()
	objectPath := names.Make("/Game/Mods/Foo.Foo_C", 0)
	packageName := names.Make("/Game/Mods/Foo", 0)
	assetClass := names.Make("Foo_C", 0)
	packagePath := names.Make("/Game/Mods", 0)
	tagName := names.Make("ParentClass", 0)

	return &Registry{
		Version: SupportedVersion,
		Names:   names,
		Entries: []Entry{{
			ObjectPath:  objectPath,
			PackageName: packageName,
			AssetClass:  assetClass,
			PackagePath: packagePath,
			Tags:        []TagValue{{Tag: tagName, Value: "/Script/Engine.Actor"}},
		}},
		Depends: [][]int32{{}},
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	reg := newTestRegistry()
	data := reg.Write()

	out, err := Read(data)
	require.NoError(t, err)
	require.Equal(t, reg.Version, out.Version)
	require.Len(t, out.Entries, 1)
	require.Equal(t, "/Game/Mods/Foo.Foo_C", out.Names.Text(out.Entries[0].ObjectPath))
	require.Equal(t, "ParentClass", out.Names.Text(out.Entries[0].Tags[0].Tag))
	require.Equal(t, "/Script/Engine.Actor", out.Entries[0].Tags[0].Value)
	require.Equal(t, reg.Depends, out.Depends)
}

func TestReadRejectsUnsupportedVersion(t *testing.T) {
	reg := newTestRegistry()
	reg.Version = SupportedVersion + 1
	data := reg.Write()

	_, err := Read(data)
	require.Error(t, err)
}
