// Package render turns generated records into output bytes.
package render

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/zedigen/internal/model"
	"github.com/gyeh/zedigen/internal/x12"
)

// Format names an output encoding.
type Format string

const (
	FormatX12        Format = "x12"
	FormatJSON       Format = "json"
	FormatJSONPretty Format = "json-pretty"
	FormatParquet    Format = "parquet"
)

var Formats = []Format{FormatX12, FormatJSON, FormatJSONPretty, FormatParquet}

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Render encodes records in format f. The X12 format needs enc; the others
// ignore it.
func Render(f Format, records []model.Record, enc *x12.Encoder) ([]byte, error) {
	switch f {
	case FormatX12:
		if enc == nil {
			return nil, fmt.Errorf("x12 render: no encoder")
		}
		return X12(records, enc)
	case FormatJSON:
		return JSON(records, false)
	case FormatJSONPretty:
		return JSON(records, true)
	case FormatParquet:
		return Parquet(records)
	default:
		return nil, fmt.Errorf("unknown output format %q", f)
	}
}

// X12 wraps every record's claim in one interchange.
func X12(records []model.Record, enc *x12.Encoder) ([]byte, error) {
	claims := make([]model.Claim, len(records))
	for i := range records {
		claims[i] = records[i].Claim
	}
	var buf bytes.Buffer
	if _, err := enc.Encode(claims).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write interchange: %w", err)
	}
	return buf.Bytes(), nil
}

// JSON encodes records as an array of {"claim", "anomalies"} objects.
// Pretty output is indented with two spaces.
func JSON(records []model.Record, pretty bool) ([]byte, error) {
	out := make([]model.Record, len(records))
	for i, r := range records {
		if r.Anomalies == nil {
			r.Anomalies = []model.Anomaly{}
		}
		out[i] = r
	}
	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(out, "", "  ")
	} else {
		b, err = json.Marshal(out)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	return b, nil
}

// Parquet writes one ClaimLineRow per service line, Snappy compressed.
func Parquet(records []model.Record) ([]byte, error) {
	var rows []model.ClaimLineRow
	for i := range records {
		rows = append(rows, records[i].LineRows()...)
	}

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[model.ClaimLineRow](&buf, parquet.Compression(&parquet.Snappy))
	if _, err := w.Write(rows); err != nil {
		return nil, fmt.Errorf("write rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}
	return buf.Bytes(), nil
}
