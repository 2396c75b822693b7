package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, dir, locale, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, locale), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, locale, "errors.yaml"), []byte(body), 0o644))
}

func TestTranslate(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "en", "ERRORS:\n  NOT_FOUND: Not found\n  INSUFFICIENT_CAPACITY: Only %d beds left\n")
	writeCatalog(t, dir, "id", "ERRORS:\n  NOT_FOUND: Tidak ditemukan\n")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "fr"), 0o755))

	require.NoError(t, LoadTranslations(dir, "en"))

	assert.Equal(t, "Tidak ditemukan", Translate("id", "NOT_FOUND"))
	assert.Equal(t, "Only 2 beds left", Translate("id", "INSUFFICIENT_CAPACITY", 2))
	assert.Equal(t, "UNKNOWN_KEY", Translate("en", "UNKNOWN_KEY"))
	assert.Equal(t, "Not found", Translate("fr", "NOT_FOUND"))
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "en", "ERRORS:\n  NOT_FOUND: Not found\n")
	writeCatalog(t, dir, "id", "ERRORS:\n  NOT_FOUND: Tidak ditemukan\n")
	require.NoError(t, LoadTranslations(dir, "en"))

	assert.Equal(t, "id", Resolve("id-ID,id;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", Resolve("de-DE"))
	assert.Equal(t, "en", Resolve(""))
}

func TestLoadTranslations_BadYAML(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "en", "ERRORS: [unclosed")

	assert.Error(t, LoadTranslations(dir, "en"))
}
