package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDevRun_UnderGoTest(t *testing.T) {
	assert.True(t, IsDevRun())
}

func TestResolveNotesDir(t *testing.T) {
	tmp := t.TempDir()

	tests := []struct {
		name      string
		path      string
		forceTemp bool
		want      string
	}{
		{name: "Real path kept", path: "/home/u/notes", want: "/home/u/notes"},
		{name: "Empty means cwd", path: "", want: "."},
		{name: "Temp path trusted", path: tmp, forceTemp: true, want: tmp},
		{name: "Re-rooted by base name", path: "/home/u/notes", forceTemp: true, want: filepath.Join(os.TempDir(), DevDirName, "notes")},
		{name: "Relative re-rooted", path: "./journal", forceTemp: true, want: filepath.Join(os.TempDir(), DevDirName, "journal")},
		{name: "Empty re-rooted to default", path: "", forceTemp: true, want: filepath.Join(os.TempDir(), DevDirName, "default")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveNotesDir(tt.path, tt.forceTemp))
		})
	}
}
