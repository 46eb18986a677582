package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix marks in-flight day files. The watcher ignores them.
const TempFilePrefix = ".dailynotes-tmp-"

// replaceDayFile swaps the day file name under dir for text. The new content
// is staged next to the target and renamed over it, so a reader never sees a
// half-written day.
func replaceDayFile(dir, name, text string, perm os.FileMode) (err error) {
	staged, err := os.CreateTemp(dir, TempFilePrefix+name+"-*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	stagedPath := staged.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(stagedPath)
		}
	}()

	_, werr := staged.WriteString(text)
	if werr == nil {
		werr = staged.Sync()
	}
	if cerr := staged.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("stage %s: %w", name, werr)
	}

	if err := os.Chmod(stagedPath, perm); err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	if err := os.Rename(stagedPath, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}
