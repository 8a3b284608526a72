package dataset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Options controls how a file is read.
type Options struct {
	// Delimiter for delimited text. If 0, ',' unless the name ends in .tsv.
	Delimiter rune
	// MaxRows limits data rows kept; 0 means unlimited.
	MaxRows int
}

// DefaultOptions picks the delimiter by extension and keeps every row.
func DefaultOptions() Options {
	return Options{}
}

// Loader reads tables and logs what it does.
type Loader struct {
	opt Options
	log zerolog.Logger
}

// NewLoader returns a loader using opt and logging to log.
func NewLoader(opt Options, log zerolog.Logger) *Loader {
	return &Loader{opt: opt, log: log}
}

// LoadFile loads a table from a path. The resolved absolute path is logged
// before the read is attempted.
func (l *Loader) LoadFile(path string) (*Table, error) {
	src := Source{Path: path}
	abs, err := filepath.Abs(path)
	if err == nil {
		src.AbsPath = abs
	}
	l.log.Info().Str("path", src.String()).Msg("loading dataset")

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, l.fail(&LoadError{Kind: NotFound, Source: src, Err: err})
		}
		return nil, l.fail(&LoadError{Kind: ParseError, Source: src, Err: fmt.Errorf("open: %w", err)})
	}
	defer f.Close()
	info, err := f.Stat()
	if err == nil && info.IsDir() {
		return nil, l.fail(&LoadError{Kind: ParseError, Source: src, Err: fmt.Errorf("%s is a directory", path)})
	}
	return l.read(filepath.Base(path), src, f)
}

// LoadReader loads a table from an uploaded stream named name.
func (l *Loader) LoadReader(name string, r io.Reader) (*Table, error) {
	src := Source{Upload: name}
	l.log.Info().Str("upload", name).Msg("loading uploaded dataset")
	return l.read(name, src, r)
}

func (l *Loader) read(name string, src Source, r io.Reader) (*Table, error) {
	opt := l.opt
	if opt.Delimiter == 0 {
		opt.Delimiter = ','
		if strings.HasSuffix(strings.ToLower(name), ".tsv") {
			opt.Delimiter = '\t'
		}
	}
	header, rows, err := formatFor(name).Read(r, opt)
	if err != nil {
		if errors.Is(err, errNoHeader) {
			return nil, l.fail(&LoadError{Kind: EmptyFile, Source: src, Err: err})
		}
		return nil, l.fail(&LoadError{Kind: ParseError, Source: src, Err: err})
	}
	if len(rows) == 0 {
		return nil, l.fail(&LoadError{Kind: EmptyFile, Source: src})
	}
	skipped := 0
	if opt.MaxRows > 0 && len(rows) > opt.MaxRows {
		skipped = len(rows) - opt.MaxRows
		rows = rows[:opt.MaxRows]
	}
	t, err := New(name, header, rows)
	if err != nil {
		return nil, l.fail(&LoadError{Kind: ParseError, Source: src, Err: err})
	}
	t.Source = src
	t.Skipped = skipped

	ev := l.log.Info().Str("source", src.String()).Str("shape", t.ShapeString())
	if skipped > 0 {
		ev = ev.Int("skipped_rows", skipped)
	}
	ev.Msg("dataset loaded")
	return t, nil
}

func (l *Loader) fail(err *LoadError) error {
	l.log.Error().Err(err).Str("kind", err.Kind.String()).Str("source", err.Source.String()).Msg("dataset load failed")
	return err
}

// LoadFile loads a path with opt and no logging.
func LoadFile(path string, opt Options) (*Table, error) {
	return NewLoader(opt, zerolog.Nop()).LoadFile(path)
}

// LoadReader loads a stream with opt and no logging.
func LoadReader(name string, r io.Reader, opt Options) (*Table, error) {
	return NewLoader(opt, zerolog.Nop()).LoadReader(name, r)
}
