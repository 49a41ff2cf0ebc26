package order

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^INV/\d{8}/[0-9A-F]{8}$`)

func TestGenerateCodeFormat(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	code := GenerateCode(now)

	require.Regexp(t, codePattern, code)
	assert.Contains(t, code, "/20260829/")
}

func TestGenerateCodeVaries(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})
	for range 100 {
		seen[GenerateCode(now)] = struct{}{}
	}
	assert.Greater(t, len(seen), 99)
}
