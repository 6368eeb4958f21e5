package pkg

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCloner creates the destination directory instead of cloning
type fakeCloner struct {
	fs     afero.Fs
	fail   map[string]bool
	cloned []string
}

func (c *fakeCloner) Clone(ctx context.Context, url, dest string) error {
	c.cloned = append(c.cloned, url)
	// Mimic a half-written clone so cleanup is exercised.
	if err := c.fs.MkdirAll(dest, 0755); err != nil {
		return err
	}
	if c.fail[url] {
		return errors.New("connection reset")
	}
	return afero.WriteFile(c.fs, dest+"/README.md", []byte("readme"), 0644)
}

func TestShellManager_InstallFramework(t *testing.T) {
	fs := afero.NewMemMapFs()
	cloner := &fakeCloner{fs: fs}
	sm := NewShellManager(testLogger(), fs, cloner, newFakeRunner(), nil, false)

	require.NoError(t, sm.InstallFramework(context.Background(), "/home/user"))
	assert.Equal(t, []string{ohMyZshURL}, cloner.cloned)

	// Second run leaves the clone alone.
	require.NoError(t, sm.InstallFramework(context.Background(), "/home/user"))
	assert.Len(t, cloner.cloned, 1)
}

func TestShellManager_InstallPlugins(t *testing.T) {
	fs := afero.NewMemMapFs()
	cloner := &fakeCloner{fs: fs, fail: map[string]bool{externalPlugins["zsh-syntax-highlighting"]: true}}
	sm := NewShellManager(testLogger(), fs, cloner, newFakeRunner(), nil, false)

	err := sm.InstallPlugins(context.Background(), "/home/user", []string{"git", "zsh-syntax-highlighting", "zsh-autosuggestions"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zsh-syntax-highlighting")
	assert.Len(t, cloner.cloned, 2, "built-in plugins are not cloned and a failure does not stop the rest")

	ok, _ := afero.DirExists(fs, "/home/user/.oh-my-zsh/custom/plugins/zsh-autosuggestions")
	assert.True(t, ok)
	failed, _ := afero.DirExists(fs, "/home/user/.oh-my-zsh/custom/plugins/zsh-syntax-highlighting")
	assert.False(t, failed, "a failed clone is removed so the next run retries it")
}

func TestShellManager_CloneUnderSpinner(t *testing.T) {
	fs := afero.NewMemMapFs()
	cloner := &fakeCloner{fs: fs, fail: map[string]bool{externalPlugins["zsh-autosuggestions"]: true}}
	sm := NewShellManager(testLogger(), fs, cloner, newFakeRunner(), terminalUX(io.Discard), false)

	require.NoError(t, sm.InstallFramework(context.Background(), "/home/user"))
	err := sm.InstallPlugins(context.Background(), "/home/user", []string{"zsh-autosuggestions"})
	assert.ErrorContains(t, err, "connection reset")
	assert.Len(t, cloner.cloned, 2)
}

func TestShellManager_DryRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	cloner := &fakeCloner{fs: fs}
	sm := NewShellManager(testLogger(), fs, cloner, newFakeRunner(), nil, true)

	require.NoError(t, sm.InstallFramework(context.Background(), "/home/user"))
	require.NoError(t, sm.InstallPlugins(context.Background(), "/home/user", []string{"zsh-autosuggestions"}))
	assert.Empty(t, cloner.cloned)
}

func TestShellManager_SetLoginShell(t *testing.T) {
	runner := newFakeRunner()
	sm := NewShellManager(testLogger(), afero.NewMemMapFs(), nil, runner, nil, false)

	require.NoError(t, sm.SetLoginShell(context.Background(), "user", "/bin/bash"))
	assert.True(t, runner.ranCommand("chsh -s /usr/bin/zsh user"))

	runner = newFakeRunner()
	sm = NewShellManager(testLogger(), afero.NewMemMapFs(), nil, runner, nil, false)
	require.NoError(t, sm.SetLoginShell(context.Background(), "user", "/usr/bin/zsh"))
	assert.Empty(t, runner.runs)

	runner.missingTools["zsh"] = true
	assert.Error(t, sm.SetLoginShell(context.Background(), "user", "/bin/bash"))

	runner = newFakeRunner()
	runner.runErrs["chsh"] = errors.New("exit status 1")
	sm = NewShellManager(testLogger(), afero.NewMemMapFs(), nil, runner, nil, false)
	assert.Error(t, sm.SetLoginShell(context.Background(), "user", "/bin/bash"))
}
