package workspace

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// MakeChunks splits text into fixed windows of roughly approx runes with
// the given overlap between consecutive windows. Windowing over runes
// keeps multi-byte text intact at chunk boundaries.
func MakeChunks(text string, approx, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= approx {
		return []string{text}
	}
	var chunks []string
	for start := 0; start < len(runes); {
		end := start + approx
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}
	return chunks
}

func sha1Hex(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}
