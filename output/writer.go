package output

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"colhash/core"
	"colhash/vectorized"
)

// Writer encodes result columns in one format. CSV and JSONL streams are
// compressed as a whole; parquet output uses the codec per page instead.
type Writer struct {
	format      Format
	compression CompressionType
	compressor  Compressor
}

// NewWriter creates a writer for the given format and compression
func NewWriter(format Format, compression CompressionType) (*Writer, error) {
	w := &Writer{format: format, compression: compression}
	if format == FormatParquet {
		return w, nil
	}
	compressor, err := CreateCompressor(compression, CompressionLevelDefault)
	if err != nil {
		return nil, err
	}
	w.compressor = compressor
	return w, nil
}

// Close releases compressor resources
func (w *Writer) Close() {
	if z, ok := w.compressor.(*ZstdCompressor); ok {
		z.Close()
	}
}

// Write encodes the named columns to dst
func (w *Writer) Write(dst io.Writer, names []string, columns []*vectorized.Vector) error {
	tracer := core.GetTracer()
	startTime := time.Now()

	var encoded bytes.Buffer
	var err error
	switch w.format {
	case FormatCSV:
		err = EncodeCSV(&encoded, names, columns)
	case FormatJSONL:
		err = EncodeJSONL(&encoded, names, columns)
	case FormatParquet:
		err = core.WriteParquet(&encoded, names, columns, parquet.Compression(parquetCodec(w.compression)))
	default:
		err = fmt.Errorf("unsupported format: %s", w.format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", w.format, err)
	}

	data := encoded.Bytes()
	if w.compressor != nil {
		if data, err = w.compressor.Compress(data); err != nil {
			return fmt.Errorf("failed to compress output: %w", err)
		}
	}
	if _, err := dst.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	tracer.Info(core.TraceComponentOutput, "Result written", core.TraceContext(
		"format", w.format.String(),
		"compression", w.compression.String(),
		"encoded_bytes", encoded.Len(),
		"written_bytes", len(data),
		"elapsed_ms", time.Since(startTime).Milliseconds(),
	))
	return nil
}

func parquetCodec(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionGzip:
		return &parquet.Gzip
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	default:
		return &parquet.Uncompressed
	}
}
