package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// codePrefix namespaces generated order codes. The code doubles as the
// external payment transaction identifier, so it must stay stable across
// payment retries for the same order.
const codePrefix = "INV"

// GenerateCode produces a candidate order code like INV/20260829/3F9A1C72.
// Uniqueness is enforced by the orders table; callers regenerate on
// ErrDuplicateCode.
func GenerateCode(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("%s/%s/%s", codePrefix, now.Format("20060102"), suffix)
}
