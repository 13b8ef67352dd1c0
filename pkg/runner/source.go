package runner

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// Source is one document to parse.
type Source struct {
	// Name identifies the document in results and logs.
	Name string

	// Open returns the document bytes. The runner closes the reader.
	Open func() (io.ReadCloser, error)
}

// BytesSource returns a Source over content.
func BytesSource(name string, content []byte) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// StringSource returns a Source over content.
func StringSource(name, content string) Source {
	return Source{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

// FileSources returns one Source per path, named by the path.
func FileSources(paths ...string) []Source {
	sources := make([]Source, len(paths))
	for i, path := range paths {
		sources[i] = Source{
			Name: path,
			Open: func() (io.ReadCloser, error) {
				f, err := os.Open(path)
				if err != nil {
					return nil, fmt.Errorf("open %s: %w", path, err)
				}
				return f, nil
			},
		}
	}
	return sources
}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err //nolint:wrapcheck // io.Reader contract requires the unwrapped error
}
