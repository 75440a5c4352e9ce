package lake

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
)

// ExecScripts reads each SQL file from fsys and executes it against the
// session, in order. A missing or empty file aborts the run; execution
// errors propagate wrapped with the script path.
func (s *Session) ExecScripts(ctx context.Context, fsys fs.FS, paths []string) error {
	for _, scriptPath := range paths {
		script, err := fs.ReadFile(fsys, scriptPath)
		if err != nil {
			return fmt.Errorf("read sql script %q: %w", scriptPath, err)
		}
		if strings.TrimSpace(string(script)) == "" {
			return fmt.Errorf("sql script %q is empty", scriptPath)
		}
		if _, err := s.db.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("execute sql script %q: %w", scriptPath, err)
		}
	}
	return nil
}
