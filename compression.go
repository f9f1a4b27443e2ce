package generational

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how a snapshot payload is compressed.
type Compression uint8

const (
	// CompressionNone stores the payload as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression.
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses Zstandard.
	CompressionZSTD Compression = 2
)

// String returns the compression name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("generational: zstd encoder: " + err.Error())
	}
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(uint64(^uint32(0))),
	)
	if err != nil {
		panic("generational: zstd decoder: " + err.Error())
	}
	return dec
}

// Upper bounds on how far one compressed byte can expand. A block claiming
// more than csize times this is rejected before anything is allocated.
const (
	lz4MaxExpansion  = 255
	zstdMaxExpansion = 32 << 10
)

// blockHeaderSize is [uncompressed u32][compressed u32]. A compressed size
// of 0 marks a block stored uncompressed.
const blockHeaderSize = 8

// compressBlock frames data as a single block. Data that does not shrink by
// at least 10% is stored uncompressed.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	if uint64(len(data)) > uint64(^uint32(0)) {
		return nil, ErrSnapshotTooLarge
	}
	var compressed []byte
	switch c {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrInvalidSnapshot, c)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
		copy(out[blockHeaderSize:], data)
		return out, nil
	}
	out := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	copy(out[blockHeaderSize:], compressed)
	return out, nil
}

// decompressBlock reverses compressBlock.
func decompressBlock(block []byte, c Compression) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, errors.New("block too small for header")
	}
	size := binary.LittleEndian.Uint32(block[0:])
	csize := binary.LittleEndian.Uint32(block[4:])
	body := block[blockHeaderSize:]

	if csize == 0 {
		if uint64(len(body)) != uint64(size) {
			return nil, errors.New("block size mismatch")
		}
		return body, nil
	}
	if uint64(len(body)) != uint64(csize) {
		return nil, errors.New("compressed block size mismatch")
	}

	switch c {
	case CompressionLZ4:
		if uint64(size) > uint64(csize)*lz4MaxExpansion {
			return nil, fmt.Errorf("lz4 block claims %d bytes from %d", size, csize)
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if uint32(n) != size {
			return nil, errors.New("decompressed size mismatch")
		}
		return out, nil
	case CompressionZSTD:
		if uint64(size) > uint64(csize)*zstdMaxExpansion {
			return nil, fmt.Errorf("zstd block claims %d bytes from %d", size, csize)
		}
		var h zstd.Header
		if err := h.Decode(body); err != nil {
			return nil, fmt.Errorf("zstd frame header: %w", err)
		}
		if h.HasFCS && h.FrameContentSize != uint64(size) {
			return nil, fmt.Errorf("zstd frame holds %d bytes, block header says %d", h.FrameContentSize, size)
		}
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		decoded, err := dec.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if uint32(len(decoded)) != size {
			return nil, errors.New("decompressed size mismatch")
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("compressed block with compression %s", c)
	}
}
