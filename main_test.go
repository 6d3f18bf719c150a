package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupOverlaysEnvAndFlags(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
sync:
  folder_id: from-file
  local_path: /srv/mirror
  interval: 600
`), 0644))
	t.Setenv("DRIVESYNC_SYNC_FOLDER_ID", "from-env")
	t.Setenv("DRIVESYNC_LEDGER_BACKEND", "bolt")

	a := newApp()
	root := newRootCmd(a)
	syncCmd, _, err := root.Find([]string{"sync"})
	require.NoError(t, err)
	require.NoError(t, syncCmd.ParseFlags([]string{"--config", cfgPath, "-i", "60"}))

	require.NoError(t, a.setup(syncCmd, nil))
	t.Cleanup(func() { _ = a.teardown(syncCmd, nil) })

	assert.Equal(t, "from-env", a.cfg.Sync.FolderID)
	assert.Equal(t, "/srv/mirror", a.cfg.Sync.LocalPath)
	assert.Equal(t, time.Minute, a.cfg.Sync.IntervalDuration)
	assert.Equal(t, "bolt", a.cfg.Ledger.Backend)
	assert.Equal(t, "token.json", a.cfg.Drive.TokenFile)
}

func TestSetupRejectsMissingExplicitConfig(t *testing.T) {
	a := newApp()
	root := newRootCmd(a)
	syncCmd, _, err := root.Find([]string{"sync"})
	require.NoError(t, err)
	require.NoError(t, syncCmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}))

	assert.Error(t, a.setup(syncCmd, nil))
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirm(strings.NewReader("y\n"), &out, "? "))
	assert.True(t, confirm(strings.NewReader("YES\n"), &out, "? "))
	assert.False(t, confirm(strings.NewReader("\n"), &out, "? "))
	assert.False(t, confirm(strings.NewReader(""), &out, "? "))
	assert.Contains(t, out.String(), "? ")
}

func TestSubcommandsRegistered(t *testing.T) {
	root := newRootCmd(newApp())
	for _, name := range []string{"sync", "download", "share", "cron"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	syncCmd, _, _ := root.Find([]string{"sync"})
	for _, flag := range []string{"folder-id", "local-path", "interval", "once"} {
		assert.NotNil(t, syncCmd.Flags().Lookup(flag), flag)
	}
	assert.Equal(t, "300", syncCmd.Flags().Lookup("interval").DefValue)
}
