package aliases

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "aliases.json"))
	require.NoError(t, err)
	assert.Empty(t, s.Projects)
	assert.Empty(t, s.ServiceTypes)
}

func TestLoad_LegacyKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "projects": {"dev": "71100000001"},
  "leistungsarten": {"prog": "1435", "meet": "1440"},
  "serviceTypes": {"meet": "1441"}
}`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "71100000001", s.Resolve(KindProject, "dev"))
	assert.Equal(t, "1435", s.Resolve(KindServiceType, "prog"))
	assert.Equal(t, "1441", s.Resolve(KindServiceType, "meet"), "serviceTypes overrides the legacy key")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "aliases.json")
	s := Empty()
	s.Add(KindProject, "dev", "71100000001")
	s.Add(KindServiceType, "prog", "1435")
	require.NoError(t, s.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "leistungsarten")
	assert.True(t, data[len(data)-1] == '\n')

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.AliasFile, loaded.AliasFile)
}

func TestResolve_EchoesUnknownInput(t *testing.T) {
	s := Empty()
	assert.Equal(t, "71100000001", s.Resolve(KindProject, "71100000001"))
}

func TestReverse(t *testing.T) {
	s := Empty()
	s.Add(KindProject, "zeta", "711")
	s.Add(KindProject, "alpha", "711")
	assert.Equal(t, "alpha", s.Reverse(KindProject, "711"))
	assert.Equal(t, "999", s.Reverse(KindProject, "999"))
}

func TestRemove(t *testing.T) {
	s := Empty()
	s.Add(KindServiceType, "prog", "1435")
	require.NoError(t, s.Remove(KindServiceType, "prog"))
	assert.Empty(t, s.List(KindServiceType))

	err := s.Remove(KindServiceType, "prog")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "prog", nf.Alias)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"project": KindProject, "p": KindProject, "service-type": KindServiceType, "st": KindServiceType} {
		k, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, k)
	}
	_, err := ParseKind("tag")
	assert.Error(t, err)
}
