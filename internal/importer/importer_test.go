package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(NewDanishParser(DefaultFilter()))
	p := r.Get("danish")
	require.NotNil(t, p)
	assert.Equal(t, "danish", p.Format())
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("Danish"))
	assert.NotNil(t, r.Get("DANISH"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := DefaultRegistry()
	assert.Panics(t, func() { r.Register(NewDanishParser(DefaultFilter())) })
}

func TestScan_MatchesPrefixes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"Lourenco-2024-01.csv",
		"Sharedexpenses-2024-01.csv",
		"Louise-2024-01.csv",
		"Louise-2024-02.csv",
		"Other-2024-01.csv",
		"Lourenco.csv",
		"Lourenco-2024-01.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Louise-dir-x.csv"), 0o755))

	files, err := Scan(dir, []string{"Lourenco", "Sharedexpenses", "Louise"})
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"Lourenco-2024-01.csv",
		"Sharedexpenses-2024-01.csv",
		"Louise-2024-01.csv",
		"Louise-2024-02.csv",
	}, names)
	assert.Equal(t, filepath.Join(dir, "Louise-2024-01.csv"), files[2].Path)
	assert.Equal(t, int64(4), files[0].Size)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "nope"), []string{"Lourenco"})
	require.NoError(t, err)
	assert.Nil(t, files)
}
