package ledger

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// Hash computes a BLAKE2b-256 hash of a ledger file's contents. The
// storage layer records it to detect when derived data is stale. A
// missing file hashes as an empty ledger, matching ReadAll.
func Hash(path string) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("initializing hash: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return hex.EncodeToString(h.Sum(nil)), nil
		}
		return "", fmt.Errorf("opening ledger for hashing: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing ledger: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
