package db

import (
	"github.com/jackc/pgx/v5"
)

// ChannelSource implements pgx.CopyFromSource by reading rows from a channel,
// so a producer goroutine can feed COPY without materializing every row.
type ChannelSource[T any] struct {
	ch      <-chan T
	values  func(T) []any
	current T
	rows    int64
}

// NewChannelSource returns a CopyFromSource that converts each received row
// with values.
func NewChannelSource[T any](ch <-chan T, values func(T) []any) *ChannelSource[T] {
	return &ChannelSource[T]{ch: ch, values: values}
}

// Next advances to the next row. It returns false when the channel is closed.
func (s *ChannelSource[T]) Next() bool {
	row, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = row
	s.rows++
	return true
}

// Values returns the current row's values in COPY column order.
func (s *ChannelSource[T]) Values() ([]any, error) {
	return s.values(s.current), nil
}

func (s *ChannelSource[T]) Err() error {
	return nil
}

// Rows reports how many rows have been handed to COPY.
func (s *ChannelSource[T]) Rows() int64 { return s.rows }

var _ pgx.CopyFromSource = (*ChannelSource[int])(nil)
