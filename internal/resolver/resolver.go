// Package resolver locates dataset files whose Korean names may be stored
// in either Unicode normalization form.
//
// The data directory is populated by four different schools on different
// operating systems. macOS filesystems store Hangul filenames decomposed
// (NFD) while the same names are usually authored composed (NFC), so a
// single-form comparison misses files that are visibly identical.
package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrNotFound is returned when no directory entry matches the dataset key,
// including when the directory itself is absent.
var ErrNotFound = errors.New("dataset file not found")

// KeyMatches reports whether key occurs as a substring of name under any
// pairing of the composed and decomposed normalization forms.
func KeyMatches(name, key string) bool {
	nameNFC := norm.NFC.String(name)
	nameNFD := norm.NFD.String(name)
	keyNFC := norm.NFC.String(key)
	keyNFD := norm.NFD.String(key)

	return strings.Contains(nameNFC, keyNFC) ||
		strings.Contains(nameNFD, keyNFC) ||
		strings.Contains(nameNFC, keyNFD) ||
		strings.Contains(nameNFD, keyNFD)
}

// KeyEquals is the equality variant of KeyMatches, used for workbook sheet
// names where a substring match would be too loose.
func KeyEquals(name, key string) bool {
	nameNFC := norm.NFC.String(name)
	nameNFD := norm.NFD.String(name)
	keyNFC := norm.NFC.String(key)
	keyNFD := norm.NFD.String(key)

	return nameNFC == keyNFC || nameNFD == keyNFC ||
		nameNFC == keyNFD || nameNFD == keyNFD
}

// Resolve returns the path of the file directly inside dir whose base name
// contains key (under either normalization form) and whose dot-prefixed
// extension matches ext exactly. The extension comparison is
// case-sensitive, matching how the data exports are named.
//
// When several files match, the lexicographically smallest filename wins
// so repeated calls return the same path for an unchanged directory. A
// missing or unreadable directory resolves to ErrNotFound; Resolve never
// panics and never mutates the directory.
func Resolve(dir, key, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", ErrNotFound
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ext {
			continue
		}
		stem := strings.TrimSuffix(name, ext)
		if KeyMatches(stem, key) {
			matches = append(matches, name)
		}
	}

	if len(matches) == 0 {
		return "", ErrNotFound
	}

	// os.ReadDir already sorts, but the tie-break contract is worth
	// stating explicitly rather than inheriting.
	sort.Strings(matches)
	return filepath.Join(dir, matches[0]), nil
}
