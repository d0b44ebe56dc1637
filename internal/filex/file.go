package filex

import (
	"fmt"
	"io"
	"os"
)

// ReadLimited reads the file at path, failing when it is larger than max
// bytes. max <= 0 disables the limit.
func ReadLimited(path string, max int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if max > 0 && fi.Size() > max {
		return nil, fmt.Errorf("%s: %d bytes exceeds limit of %d", path, fi.Size(), max)
	}

	var r io.Reader = f
	if max > 0 {
		r = io.LimitReader(f, max+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if max > 0 && int64(len(b)) > max {
		return nil, fmt.Errorf("%s exceeds limit of %d bytes", path, max)
	}
	return b, nil
}
