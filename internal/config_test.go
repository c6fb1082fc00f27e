package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "novaheap", cfg.AppName)
	require.Equal(t, DefaultDataDir, cfg.Storage.DataDir)
	require.Equal(t, 4096, cfg.Storage.PageSize)
	require.Equal(t, DefaultPoolPages, cfg.Storage.PoolPages)
	require.Equal(t, DefaultSchema, cfg.Storage.SchemaFile)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "text", cfg.Log.Format)
	require.Equal(t, "stderr", cfg.Log.Output)

	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultPoolPages, cfg.Storage.PoolPages)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeFile(t, "novaheap.yaml", `
storage:
  data_dir: /tmp/heap
  pool_pages: 8
log:
  level: debug
  format: json
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/heap", cfg.Storage.DataDir)
	require.Equal(t, 8, cfg.Storage.PoolPages)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)

	t.Setenv("NOVAHEAP_STORAGE_POOL_PAGES", "3")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Storage.PoolPages)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"page size":  "storage:\n  page_size: 8192\n",
		"pool pages": "storage:\n  pool_pages: 0\n",
		"log level":  "log:\n  level: loud\n",
		"log format": "log:\n  format: xml\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "bad.yaml", body))
			require.Error(t, err)
		})
	}

	_, err := LoadConfig(writeFile(t, "broken.yaml", "storage: [\n"))
	require.Error(t, err)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "novaheap.yaml")
	require.NoError(t, WriteDefaultConfig(path, "/srv/heap"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/srv/heap", cfg.Storage.DataDir)
	require.Equal(t, DefaultPoolPages, cfg.Storage.PoolPages)

	// second call keeps the existing file
	require.NoError(t, WriteDefaultConfig(path, "/elsewhere"))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/srv/heap", cfg.Storage.DataDir)
}
