package writeback

import (
	"os"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplace_OverwritesContent(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "a.json", []byte(`{"workflow":{}}`), 0o644))

	require.NoError(t, Replace(fsys, "a.json", []byte("{}\n")))

	got, err := util.ReadFile(fsys, "a.json")
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(got))
}

func TestReplace_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fsys := osfs.New(dir)
	require.NoError(t, util.WriteFile(fsys, "a.json", []byte("old"), 0o644))

	require.NoError(t, Replace(fsys, "a.json", []byte("new")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.json", entries[0].Name())
}

func TestReplace_PreservesPermissions(t *testing.T) {
	dir := t.TempDir()
	fsys := osfs.New(dir)
	require.NoError(t, util.WriteFile(fsys, "a.json", []byte("old"), 0o600))
	require.NoError(t, os.Chmod(dir+"/a.json", 0o640))

	require.NoError(t, Replace(fsys, "a.json", []byte("new")))

	info, err := os.Stat(dir + "/a.json")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestReplace_CreatesMissingFile(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, Replace(fsys, "new.json", []byte("{}")))

	got, err := util.ReadFile(fsys, "new.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))
}
