package codegen

import (
	"io"
	"io/fs"

	"github.com/cockroachdb/errors"
	"github.com/smasher164/ctype/config"
	"github.com/smasher164/ctype/fsx"
)

// Streams are the three outputs of the emitter. Header receives prototypes,
// typedefs and IO prototypes. Body receives aggregate definitions and the
// routines synthesized for them. Default receives everything written to a
// nil writer.
type Streams struct {
	Header  io.Writer
	Body    io.Writer
	Default io.Writer
}

func (s *Streams) route(w io.Writer) io.Writer {
	if w == nil {
		return s.Default
	}
	return w
}

// FileStreams are Streams backed by files that must be closed.
type FileStreams struct {
	Streams
	files []fsx.WriteableFile
}

func (s *FileStreams) Close() error {
	var err error
	for _, f := range s.files {
		err = errors.CombineErrors(err, f.Close())
	}
	s.files = nil
	return err
}

// CreateStreams creates the stream files named by cfg in outfs.
func CreateStreams(outfs fs.FS, cfg *config.Config) (*FileStreams, error) {
	var s FileStreams
	for _, out := range []struct {
		w    *io.Writer
		name string
	}{
		{&s.Header, cfg.HeaderFile},
		{&s.Body, cfg.BodyFile},
		{&s.Default, cfg.DefaultFile},
	} {
		f, err := fsx.CreateAll(outfs, out.name, 0o755)
		if err != nil {
			return nil, errors.CombineErrors(errors.Wrapf(err, "create %s", out.name), s.Close())
		}
		s.files = append(s.files, f)
		*out.w = f
	}
	return &s, nil
}
