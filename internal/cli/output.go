package cli

import (
	"fmt"

	"github.com/devmap/devmap/pkg/snapshot"
)

// writeSnapshot wraps section in a snapshot and writes it to path.
func writeSnapshot(section any, path string) error {
	s, err := snapshot.New(section)
	if err != nil {
		return err
	}
	if err := snapshot.WriteFile(s, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
