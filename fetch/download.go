package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
)

// DownloadFile streams url into path using f. If integrity is non-empty the
// bytes are verified against it and a mismatch is returned as an error.
// The file is left in place on failure; callers own the directory it lives in.
func DownloadFile(ctx context.Context, f FetcherInterface, url, path, integrity string) (int64, error) {
	var check *Integrity
	if integrity != "" {
		var err error
		check, err = ParseIntegrity(integrity)
		if err != nil {
			return 0, err
		}
	}

	artifact, err := f.Fetch(ctx, url)
	if err != nil {
		return 0, err
	}
	defer func() { _ = artifact.Body.Close() }()

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}

	var w io.Writer = out
	if check != nil {
		w = io.MultiWriter(out, check)
	}

	n, copyErr := io.Copy(w, artifact.Body)
	closeErr := out.Close()
	if copyErr != nil {
		return n, fmt.Errorf("downloading %s: %w", url, copyErr)
	}
	if closeErr != nil {
		return n, fmt.Errorf("closing %s: %w", path, closeErr)
	}
	if artifact.Size >= 0 && n != artifact.Size {
		return n, fmt.Errorf("downloading %s: got %d bytes, want %d", url, n, artifact.Size)
	}

	if check != nil {
		if err := check.Check(); err != nil {
			return n, err
		}
	}
	return n, nil
}
