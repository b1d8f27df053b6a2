package itemsource

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"
)

// Normalize canonicalizes a vocabulary term for identity purposes:
// lowercased, trimmed, inner whitespace collapsed to single spaces.
// "  El  Perro " and "el perro" are the same item.
func Normalize(term string) string {
	return strings.Join(strings.Fields(strings.ToLower(term)), " ")
}

// Key returns the stable item key for a term: the SHA-256 of its
// normalized form, as hex. The key survives cosmetic edits to the word
// list, so review records keep their history.
func Key(term string) string {
	sum := sha256.Sum256([]byte(Normalize(term)))
	return fmt.Sprintf("%x", sum)
}

// ParseFile reads a word-list file and returns its terms.
func ParseFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a word list: one term per line, blank lines skipped,
// '#' starts a comment that runs to end of line. Terms that normalize
// to the same form are deduplicated, first spelling wins.
func Parse(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var terms []string
	seen := make(map[string]bool)

	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		norm := Normalize(line)
		if seen[norm] {
			continue
		}
		seen[norm] = true
		terms = append(terms, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}
	return terms, nil
}
