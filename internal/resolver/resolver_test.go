package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	return path
}

func TestKeyMatches(t *testing.T) {
	nfc := "송도고"
	nfd := norm.NFD.String(nfc)
	require.NotEqual(t, nfc, nfd)

	assert.True(t, KeyMatches("송도고_환경데이터", nfc))
	assert.True(t, KeyMatches(norm.NFD.String("송도고_환경데이터"), nfc))
	assert.True(t, KeyMatches("송도고_환경데이터", nfd))
	assert.True(t, KeyMatches(norm.NFD.String("송도고_환경데이터"), nfd))

	assert.False(t, KeyMatches("하늘고_환경데이터", nfc))
}

func TestKeyEquals(t *testing.T) {
	nfc := "아라고"
	nfd := norm.NFD.String(nfc)

	assert.True(t, KeyEquals(nfd, nfc))
	assert.True(t, KeyEquals(nfc, nfd))
	// Equality, not substring.
	assert.False(t, KeyEquals("아라고등학교", nfc))
}

func TestResolve_DecomposedFilename(t *testing.T) {
	// Scenario: the CSV was written on macOS, so the on-disk name is NFD.
	dir := t.TempDir()
	want := writeFile(t, dir, norm.NFD.String("송도고_환경데이터")+".csv")

	got, err := Resolve(dir, "송도고", ".csv")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolve_DecomposedKey(t *testing.T) {
	dir := t.TempDir()
	want := writeFile(t, dir, "하늘고_환경데이터.csv")

	got, err := Resolve(dir, norm.NFD.String("하늘고"), ".csv")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolve_NotFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "송도고_환경데이터.csv")

	_, err := Resolve(dir, "동산고", ".csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_MissingDirectory(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope"), "송도고", ".csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_ExtensionExact(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "송도고_환경데이터.CSV")

	_, err := Resolve(dir, "송도고", ".csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_IgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "송도고_백업.csv"), 0755))
	want := writeFile(t, dir, "송도고_환경데이터.csv")

	got, err := Resolve(dir, "송도고", ".csv")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolve_TieBreaksLexicographically(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "송도고_환경데이터_v2.csv")
	first := writeFile(t, dir, "송도고_환경데이터_v1.csv")

	for i := 0; i < 5; i++ {
		got, err := Resolve(dir, "송도고", ".csv")
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "4개교_생육결과데이터.xlsx")

	a, err := Resolve(dir, "생육결과데이터", ".xlsx")
	require.NoError(t, err)
	b, err := Resolve(dir, "생육결과데이터", ".xlsx")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
