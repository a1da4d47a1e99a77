package brief

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	"github.com/hupe1980/loopgo/blobstore"
	"github.com/hupe1980/loopgo/feature"
	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"
)

var errPatternShape = errors.New("pattern coordinate lists differ in length or are empty")

type patternFile struct {
	X1 []int `yaml:"x1,flow"`
	Y1 []int `yaml:"y1,flow"`
	X2 []int `yaml:"x2,flow"`
	Y2 []int `yaml:"y2,flow"`
}

// LoadPattern decodes a pattern file from r.
func LoadPattern(r io.Reader) (feature.Pattern, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	} else {
		r = br
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var pf patternFile
	if err := yaml.Unmarshal(stripDirective(data), &pf); err != nil {
		return nil, err
	}

	n := len(pf.X1)
	if n == 0 || len(pf.Y1) != n || len(pf.X2) != n || len(pf.Y2) != n {
		return nil, errPatternShape
	}

	p := make(feature.Pattern, n)
	for i := range p {
		p[i] = feature.Pair{X1: pf.X1[i], Y1: pf.Y1[i], X2: pf.X2[i], Y2: pf.Y2[i]}
	}
	return p, nil
}

// stripDirective removes the OpenCV "%YAML:1.0" line, which is not valid YAML 1.2.
func stripDirective(data []byte) []byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("%YAML")) {
		return data
	}
	if i := bytes.IndexByte(trimmed, '\n'); i >= 0 {
		rest := trimmed[i+1:]
		if t := bytes.TrimLeft(rest, " \t\r\n"); bytes.HasPrefix(t, []byte("---")) {
			if j := bytes.IndexByte(t, '\n'); j >= 0 {
				return t[j+1:]
			}
			return nil
		}
		return rest
	}
	return nil
}

// WritePattern encodes p in the OpenCV-compatible pattern format.
func WritePattern(w io.Writer, p feature.Pattern) error {
	pf := patternFile{
		X1: make([]int, len(p)),
		Y1: make([]int, len(p)),
		X2: make([]int, len(p)),
		Y2: make([]int, len(p)),
	}
	for i, t := range p {
		pf.X1[i], pf.Y1[i], pf.X2[i], pf.Y2[i] = t.X1, t.Y1, t.X2, t.Y2
	}

	if _, err := io.WriteString(w, "%YAML:1.0\n---\n"); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(&pf); err != nil {
		return err
	}
	return enc.Close()
}

// NewFromReader creates an Extractor with the pattern decoded from r.
// name identifies the resource in errors.
func NewFromReader(r io.Reader, name string, optFns ...Option) (*Extractor, error) {
	p, err := LoadPattern(r)
	if err != nil {
		return nil, feature.NewConfigError(name, err)
	}
	return New(p, optFns...)
}

// NewFromFile creates an Extractor with the pattern loaded from path.
// Files ending in .gz may also be plain text; compression is detected from content.
func NewFromFile(path string, optFns ...Option) (*Extractor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, feature.NewConfigError(path, err)
	}
	defer f.Close()
	return NewFromReader(f, path, optFns...)
}

// NewFromStore creates an Extractor with the pattern read from a blob.
func NewFromStore(ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*Extractor, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, feature.NewConfigError(name, err)
	}
	return NewFromReader(bytes.NewReader(data), name, optFns...)
}
