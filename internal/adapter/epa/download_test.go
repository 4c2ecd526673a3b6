package epa_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tapsafe/sdwis-ingest/internal/adapter/epa"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func serve(t *testing.T, status int, body []byte) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func newDownloader(url string) *epa.Downloader {
	return epa.NewDownloader(url, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDownloader_FetchExtractsArchive(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"SDWA_PUB_WATER_SYSTEMS.csv":      "PWSID,PWS_NAME\nPWS001,Acme\n",
		"SDWA_VIOLATIONS_ENFORCEMENT.csv": "PWSID,VIOLATION_ID\n",
		"docs/README.txt":                 "readme",
	})
	dir := filepath.Join(t.TempDir(), "data")

	files, err := newDownloader(serve(t, http.StatusOK, archive)).Fetch(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, files, 3)
	got, err := os.ReadFile(filepath.Join(dir, "SDWA_PUB_WATER_SYSTEMS.csv"))
	require.NoError(t, err)
	assert.Equal(t, "PWSID,PWS_NAME\nPWS001,Acme\n", string(got))
	assert.FileExists(t, filepath.Join(dir, "docs", "README.txt"))
	assert.FileExists(t, filepath.Join(dir, epa.ArchiveName))
}

func TestDownloader_BadStatusLeavesNoArchive(t *testing.T) {
	dir := t.TempDir()

	_, err := newDownloader(serve(t, http.StatusNotFound, nil)).Download(context.Background(), dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtract_RejectsEscapingEntries(t *testing.T) {
	for _, name := range []string{"../evil.csv", "a/../../evil.csv", "/etc/evil.csv", `..\evil.csv`} {
		t.Run(name, func(t *testing.T) {
			base := t.TempDir()
			dir := filepath.Join(base, "data")
			require.NoError(t, os.MkdirAll(dir, 0o755))
			archive := filepath.Join(base, "bad.zip")
			require.NoError(t, os.WriteFile(archive, buildZip(t, map[string]string{
				"ok.csv": "A\n1\n",
				name:     "pwned",
			}), 0o600))

			_, err := epa.Extract(archive, dir)

			require.ErrorIs(t, err, epa.ErrUnsafePath)
			assert.NoFileExists(t, filepath.Join(base, "evil.csv"))
			assert.NoFileExists(t, filepath.Join(dir, "ok.csv"))
		})
	}
}

func TestExtract_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

	_, err := epa.Extract(path, t.TempDir())
	assert.Error(t, err)
}
