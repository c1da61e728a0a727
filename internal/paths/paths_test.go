package paths

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUserConfigDir points the platform config root at dir for one test.
func stubUserConfigDir(t *testing.T, dir string, err error) {
	t.Helper()
	orig := userConfigDir
	userConfigDir = func() (string, error) { return dir, err }
	t.Cleanup(func() { userConfigDir = orig })
}

func TestResolveConfigDir(t *testing.T) {
	root := t.TempDir()
	stubUserConfigDir(t, filepath.Join(root, "platform"), nil)

	tests := []struct {
		name   string
		flag   string
		envVal string
		want   string
	}{
		{
			name:   "flag wins over env",
			flag:   filepath.Join(root, "flag"),
			envVal: filepath.Join(root, "env"),
			want:   filepath.Join(root, "flag"),
		},
		{
			name:   "env when flag empty",
			envVal: filepath.Join(root, "env"),
			want:   filepath.Join(root, "env"),
		},
		{
			name:   "blank env falls through to the platform dir",
			envVal: "  ",
			want:   filepath.Join(root, "platform", "canvas"),
		},
		{
			name: "platform dir when nothing is set",
			want: filepath.Join(root, "platform", "canvas"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveConfigDirPlatformError(t *testing.T) {
	stubUserConfigDir(t, "", errors.New("no home"))
	t.Setenv(EnvConfigDir, "")

	_, err := ResolveConfigDir("")
	assert.ErrorContains(t, err, "no home")
}

func TestResolveDataDir(t *testing.T) {
	project := t.TempDir()
	t.Chdir(project)

	tests := []struct {
		name       string
		flag       string
		configYAML string
		envVal     string
		want       string
	}{
		{
			name:       "flag wins over all",
			flag:       "/flag/data",
			configYAML: "/config/data",
			envVal:     "/env/data",
			want:       "/flag/data",
		},
		{
			name:       "config.yaml wins over env",
			configYAML: "/config/data",
			envVal:     "/env/data",
			want:       "/config/data",
		},
		{
			name:   "env when flag and config are empty",
			envVal: "/env/data",
			want:   "/env/data",
		},
		{
			name: "next to the working directory by default",
			want: filepath.Join(project, DataDirName),
		},
		{
			name: "relative flag resolves against the working directory",
			flag: "boards/q3",
			want: filepath.Join(project, "boards", "q3"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVal)
			got, err := ResolveDataDir(tt.flag, tt.configYAML)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
