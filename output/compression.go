package output

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// CompressionType represents the compression applied to encoded results
type CompressionType uint8

const (
	CompressionNone   CompressionType = 0
	CompressionGzip   CompressionType = 1
	CompressionSnappy CompressionType = 2
	CompressionZstd   CompressionType = 3
)

// CompressionLevel represents compression level for algorithms that support it
type CompressionLevel int

const (
	CompressionLevelFastest CompressionLevel = 1
	CompressionLevelDefault CompressionLevel = 0
	CompressionLevelBetter  CompressionLevel = 3
	CompressionLevelBest    CompressionLevel = 9
)

func (ct CompressionType) String() string {
	switch ct {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionSnappy:
		return "snappy"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(ct))
	}
}

// Extension is the file suffix conventionally used for the compression
func (ct CompressionType) Extension() string {
	switch ct {
	case CompressionGzip:
		return ".gz"
	case CompressionSnappy:
		return ".sz"
	case CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}

// ParseCompressionType maps a name such as "zstd" to its CompressionType
func ParseCompressionType(name string) (CompressionType, error) {
	for ct := CompressionNone; ct <= CompressionZstd; ct++ {
		if strings.EqualFold(ct.String(), name) {
			return ct, nil
		}
	}
	if name == "" {
		return CompressionNone, nil
	}
	return CompressionNone, fmt.Errorf("unsupported compression: %s", name)
}

// Compressor interface for different compression algorithms
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Type() CompressionType
}

// NoneCompressor passes data through unchanged
type NoneCompressor struct{}

func (n *NoneCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (n *NoneCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }
func (n *NoneCompressor) Type() CompressionType                  { return CompressionNone }

// SnappyCompressor implements Snappy block compression
type SnappyCompressor struct{}

func (s *SnappyCompressor) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (s *SnappyCompressor) Decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}

func (s *SnappyCompressor) Type() CompressionType {
	return CompressionSnappy
}

// ZstdCompressor implements Zstandard compression
type ZstdCompressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewZstdCompressor(level CompressionLevel) (*ZstdCompressor, error) {
	zstdLevel := zstd.SpeedDefault
	switch level {
	case CompressionLevelFastest:
		zstdLevel = zstd.SpeedFastest
	case CompressionLevelBetter:
		zstdLevel = zstd.SpeedBetterCompression
	case CompressionLevelBest:
		zstdLevel = zstd.SpeedBestCompression
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstdLevel))
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, err
	}
	return &ZstdCompressor{encoder: encoder, decoder: decoder}, nil
}

func (z *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return z.encoder.EncodeAll(data, nil), nil
}

func (z *ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	return z.decoder.DecodeAll(data, nil)
}

func (z *ZstdCompressor) Type() CompressionType {
	return CompressionZstd
}

// Close releases the encoder and decoder
func (z *ZstdCompressor) Close() {
	if z.encoder != nil {
		z.encoder.Close()
	}
	if z.decoder != nil {
		z.decoder.Close()
	}
}

// GzipCompressor implements Gzip compression
type GzipCompressor struct {
	level int
}

func NewGzipCompressor(level CompressionLevel) *GzipCompressor {
	gzipLevel := gzip.DefaultCompression
	switch level {
	case CompressionLevelFastest:
		gzipLevel = gzip.BestSpeed
	case CompressionLevelBest:
		gzipLevel = gzip.BestCompression
	}
	return &GzipCompressor{level: gzipLevel}
}

func (g *GzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buf, g.level)
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *GzipCompressor) Decompress(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func (g *GzipCompressor) Type() CompressionType {
	return CompressionGzip
}

// CreateCompressor creates compressor instances
func CreateCompressor(compressionType CompressionType, level CompressionLevel) (Compressor, error) {
	switch compressionType {
	case CompressionNone:
		return &NoneCompressor{}, nil
	case CompressionSnappy:
		return &SnappyCompressor{}, nil
	case CompressionZstd:
		return NewZstdCompressor(level)
	case CompressionGzip:
		return NewGzipCompressor(level), nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %d", compressionType)
	}
}
