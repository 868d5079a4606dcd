package utils_test

import (
	"testing"

	"kino/utils"
)

func TestGenerateTokenIsUniqueAndURLSafe(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := utils.GenerateToken()
		if err != nil {
			t.Fatalf("generate returned error: %v", err)
		}
		if len(token) < 40 {
			t.Fatalf("token too short: %q", token)
		}
		for _, r := range token {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			default:
				t.Fatalf("token contains non url-safe rune %q", r)
			}
		}
		if seen[token] {
			t.Fatalf("duplicate token generated")
		}
		seen[token] = true
	}
}
