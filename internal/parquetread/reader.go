// Package parquetread streams ClaimLineRow records back out of Parquet
// output produced by the generator.
package parquetread

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/zedigen/internal/model"
)

// Reader wraps a parquet GenericReader over ClaimLineRow.
type Reader struct {
	closer io.Closer
	reader *parquet.GenericReader[model.ClaimLineRow]
}

// Open opens a Parquet file and returns a streaming Reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}

	r, err := newReader(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// FromBytes reads an in-memory Parquet document.
func FromBytes(b []byte) (*Reader, error) {
	return newReader(bytes.NewReader(b), int64(len(b)))
}

func newReader(ra io.ReaderAt, size int64) (*Reader, error) {
	pf, err := parquet.OpenFile(ra, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	return &Reader{reader: parquet.NewGenericReader[model.ClaimLineRow](pf)}, nil
}

func (r *Reader) NumRows() int64 {
	return r.reader.NumRows()
}

// Read reads up to len(rows) records. It returns io.EOF when done.
func (r *Reader) Read(rows []model.ClaimLineRow) (int, error) {
	n, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read parquet rows: %w", err)
	}
	return n, err
}

// ReadAll drains the reader.
func (r *Reader) ReadAll() ([]model.ClaimLineRow, error) {
	out := make([]model.ClaimLineRow, 0, r.NumRows())
	buf := make([]model.ClaimLineRow, 256)
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

func (r *Reader) Schema() *parquet.Schema {
	return r.reader.Schema()
}

// Close releases all resources.
func (r *Reader) Close() error {
	err := r.reader.Close()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
