package feedback

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"rallycut/internal/services"
)

// Fingerprint derives a stable identity for a source file from its absolute
// path, size, and modification time. A re-encode or replacement changes the
// fingerprint and invalidates cached analyses.
func Fingerprint(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", services.Wrap(services.ErrInput, "store", "fingerprint", "resolve path", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", services.Wrap(services.ErrInput, "store", "fingerprint",
			fmt.Sprintf("stat %s", abs), err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrInput, "store", "fingerprint",
			fmt.Sprintf("%s is a directory", abs), nil)
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d", abs, info.Size(), info.ModTime().UnixNano())))
	return hex.EncodeToString(sum[:]), nil
}
