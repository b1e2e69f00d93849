package export

import (
	"errors"
	"fmt"
	"os"
)

// removeArtifacts deletes scratch files best-effort: every path is attempted
// and the failures are joined, so one busy file cannot strand the rest.
func removeArtifacts(paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}
