package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// precompress writes a .gz sibling for every output so a static file server
// can hand out compressed bundles without compressing per request.
func precompress(workDir string, outputs []string) error {
	for _, out := range outputs {
		if strings.HasSuffix(out, ".map") {
			continue
		}
		if err := gzipFile(filepath.Join(workDir, filepath.FromSlash(out))); err != nil {
			return fmt.Errorf("failed to precompress %s: %w", out, err)
		}
	}
	return nil
}

func gzipFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(path+".gz", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	zw, err := gzip.NewWriterLevel(dst, gzip.BestCompression)
	if err != nil {
		_ = dst.Close()
		return err
	}
	zw.Name = filepath.Base(path)

	if _, err := io.Copy(zw, src); err != nil {
		_ = zw.Close()
		_ = dst.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
