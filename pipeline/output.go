package pipeline

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"

	"github.com/janelia-flyem/chunkgrid/chunkgrid"
	"github.com/janelia-flyem/chunkgrid/topology"
)

// WriteImage encodes the classified cells over the scanned rectangle as a PNG.
func (r *Result) WriteImage(w io.Writer) error {
	return topology.WritePNG(w, r.Topology.Cells, r.Cluster.Extent())
}

// WriteSchematic writes the gzip-compressed litematic document.
func (r *Result) WriteSchematic(w io.Writer) (int64, error) {
	return r.Schematic.WriteTo(w)
}

// FileSummary describes one written output file.
type FileSummary struct {
	Path   string
	Bytes  int64
	Digest string // hex BLAKE3-256 of the file contents
}

func (f FileSummary) String() string {
	return fmt.Sprintf("%s (%s, blake3 %s)", f.Path, humanize.Bytes(uint64(f.Bytes)), f.Digest)
}

// Summary lists the files written by WriteOutputs.  Skipped outputs are nil.
type Summary struct {
	Image     *FileSummary
	Schematic *FileSummary
}

// WriteOutputs writes the configured output files, creating parent directories as
// needed.  An empty path skips that output.
func WriteOutputs(out OutputConfig, r *Result) (*Summary, error) {
	var summary Summary
	if out.Image != "" {
		fs, err := writeFile(out.Image, func(w io.Writer) (int64, error) {
			cw := &countingWriter{w: w}
			err := r.WriteImage(cw)
			return cw.n, err
		})
		if err != nil {
			return nil, err
		}
		chunkgrid.Infof("Wrote image %s\n", fs)
		summary.Image = fs
	}
	if out.Schematic != "" {
		fs, err := writeFile(out.Schematic, r.WriteSchematic)
		if err != nil {
			return nil, err
		}
		chunkgrid.Infof("Wrote schematic %s\n", fs)
		summary.Schematic = fs
	}
	return &summary, nil
}

func writeFile(path string, write func(io.Writer) (int64, error)) (*FileSummary, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("unable to create output directory %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create output file: %w", err)
	}
	hasher := blake3.New()
	n, err := write(io.MultiWriter(f, hasher))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("unable to close %q: %w", path, err)
	}
	return &FileSummary{
		Path:   path,
		Bytes:  n,
		Digest: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
