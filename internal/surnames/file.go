package surnames

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// Read parses a line-oriented override list: one preferred spelling per
// line. Blank lines and lines starting with '#' are skipped.
func Read(r io.Reader) (*Table, error) {
	var spellings []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		spellings = append(spellings, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read surname overrides: %w", err)
	}
	return NewTable(spellings), nil
}

// LoadFile reads the override list at path. A missing file yields an empty
// table and no error.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewTable(nil), nil
		}
		return nil, fmt.Errorf("open surname overrides %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// FileSource loads overrides from a file on every Load.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.Path)
}

func (s FileSource) Describe() string { return "file:" + s.Path }
