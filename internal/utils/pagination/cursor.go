package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Cursor tokens for keyset pagination over the transaction ledger. The
// token is an opaque base64 string carrying the sort-key fields of the last
// row served, pipe-separated. Keyset cursors stay stable while new lines
// are appended, which offset pagination does not.

// EncodeCursor builds an opaque token from the sort-key fields of the last
// row on a page.
func EncodeCursor(fields ...string) string {
	return base64.StdEncoding.EncodeToString([]byte(strings.Join(fields, "|")))
}

// DecodeCursor parses a token back into its sort-key fields.
func DecodeCursor(token string) ([]string, error) {
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token: %w", err)
	}
	return strings.Split(string(decoded), "|"), nil
}
