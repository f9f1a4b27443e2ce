package generational

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/RoaringBitmap/roaring/v2"
)

// Snapshot layout:
//
//	"GVEC" | version u8 | compression u8 | generation bytes u8 | overflow u8 | block
//
// The block (see compressBlock) carries the payload:
//
//	codec name | slots | length | free head | occupied bitmap | retired bitmap | slots...
//
// Integers are uvarints, strings and bitmaps are length prefixed. Each slot
// is its generation followed by its free link (vacant), its encoded value
// (occupied) or nothing (retired).
const (
	snapshotMagic   = "GVEC"
	snapshotVersion = 1
	snapshotHeader  = 8
)

type snapshotOptions struct {
	compression Compression
}

// SnapshotOption configures WriteSnapshot.
type SnapshotOption func(*snapshotOptions)

// WithCompression selects the payload compression. The default is none.
func WithCompression(c Compression) SnapshotOption {
	return func(o *snapshotOptions) {
		o.compression = c
	}
}

func generationBytes[G Generation]() uint8 {
	return uint8(bits.Len64(uint64(MaxGeneration[G]())) / 8)
}

// WriteSnapshot writes the whole backing store, vacant slots and their
// generations included, so that handles issued before the snapshot resolve
// the same way against the arena read back by ReadSnapshot. Values are
// encoded with codec; nil selects JSONCodec.
func (v *GenVec[T, G]) WriteSnapshot(w io.Writer, codec Codec, opts ...SnapshotOption) error {
	if codec == nil {
		codec = JSONCodec{}
	}
	var o snapshotOptions
	for _, opt := range opts {
		opt(&o)
	}
	if v.reserved > 0 {
		return ErrReservationPending
	}
	if uint64(len(v.entries)) > uint64(^uint32(0)) {
		return ErrSnapshotTooLarge
	}

	occupied := roaring.New()
	retired := roaring.New()
	for i := range v.entries {
		switch v.entries[i].state {
		case slotOccupied:
			occupied.Add(uint32(i))
		case slotRetired:
			retired.Add(uint32(i))
		}
	}

	payload := make([]byte, 0, 64+len(v.entries)*4)
	payload = appendBytes(payload, []byte(codec.Name()))
	payload = binary.AppendUvarint(payload, uint64(len(v.entries)))
	payload = binary.AppendUvarint(payload, uint64(v.length))
	payload = binary.AppendUvarint(payload, uint64(v.free))
	for _, bm := range []*roaring.Bitmap{occupied, retired} {
		b, err := bm.ToBytes()
		if err != nil {
			return fmt.Errorf("encode bitmap: %w", err)
		}
		payload = appendBytes(payload, b)
	}
	for i := range v.entries {
		e := &v.entries[i]
		payload = binary.AppendUvarint(payload, uint64(e.generation))
		switch e.state {
		case slotVacant:
			payload = binary.AppendUvarint(payload, uint64(e.next))
		case slotOccupied:
			b, err := codec.Marshal(e.value)
			if err != nil {
				return fmt.Errorf("encode slot %d: %w", i, err)
			}
			payload = appendBytes(payload, b)
		}
	}

	block, err := compressBlock(payload, o.compression)
	if err != nil {
		return err
	}
	header := []byte{
		snapshotMagic[0], snapshotMagic[1], snapshotMagic[2], snapshotMagic[3],
		snapshotVersion, byte(o.compression), generationBytes[G](), byte(v.overflow),
	}
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(block)
	return err
}

// ReadSnapshot reads an arena written by WriteSnapshot. The snapshot is
// validated in full; a free list that is cyclic or does not cover exactly
// the vacant slots is rejected with ErrInvalidSnapshot.
func ReadSnapshot[T any, G Generation](r io.Reader, codec Codec) (GenVec[T, G], error) {
	if codec == nil {
		codec = JSONCodec{}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return GenVec[T, G]{}, err
	}
	if len(data) < snapshotHeader || string(data[:4]) != snapshotMagic {
		return GenVec[T, G]{}, fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}
	if data[4] != snapshotVersion {
		return GenVec[T, G]{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, data[4])
	}
	compression := Compression(data[5])
	if compression > CompressionZSTD {
		return GenVec[T, G]{}, fmt.Errorf("%w: unknown compression %d", ErrInvalidSnapshot, data[5])
	}
	if want := generationBytes[G](); data[6] != want {
		return GenVec[T, G]{}, fmt.Errorf("%w: snapshot has %d bytes, want %d", ErrGenerationWidth, data[6], want)
	}
	overflow := OverflowPolicy(data[7])
	if overflow > Saturating {
		return GenVec[T, G]{}, fmt.Errorf("%w: unknown overflow policy %d", ErrInvalidSnapshot, data[7])
	}
	payload, err := decompressBlock(data[snapshotHeader:], compression)
	if err != nil {
		return GenVec[T, G]{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	v, err := decodeSnapshot[T, G](payload, codec, overflow)
	if err != nil {
		return GenVec[T, G]{}, err
	}
	return v, nil
}

func decodeSnapshot[T any, G Generation](payload []byte, codec Codec, overflow OverflowPolicy) (GenVec[T, G], error) {
	d := &snapshotDecoder{buf: payload}
	name := d.bytes()
	slots := d.uvarint()
	length := d.uvarint()
	free := d.uvarint()
	occupiedBytes := d.bytes()
	retiredBytes := d.bytes()
	if d.err != nil {
		return GenVec[T, G]{}, d.err
	}
	if string(name) != codec.Name() {
		return GenVec[T, G]{}, fmt.Errorf("%w: snapshot uses %q, reader uses %q", ErrCodecMismatch, name, codec.Name())
	}
	// Every slot takes at least one byte.
	if slots > uint64(len(d.buf)-d.off) || slots > uint64(^uint32(0)) {
		return GenVec[T, G]{}, fmt.Errorf("%w: slot count %d out of range", ErrInvalidSnapshot, slots)
	}
	if free > slots || length > slots {
		return GenVec[T, G]{}, fmt.Errorf("%w: header out of range", ErrInvalidSnapshot)
	}

	occupied := roaring.New()
	retired := roaring.New()
	if err := occupied.UnmarshalBinary(occupiedBytes); err != nil {
		return GenVec[T, G]{}, fmt.Errorf("%w: occupied set: %w", ErrInvalidSnapshot, err)
	}
	if err := retired.UnmarshalBinary(retiredBytes); err != nil {
		return GenVec[T, G]{}, fmt.Errorf("%w: retired set: %w", ErrInvalidSnapshot, err)
	}
	for _, bm := range []*roaring.Bitmap{occupied, retired} {
		if !bm.IsEmpty() && uint64(bm.Maximum()) >= slots {
			return GenVec[T, G]{}, fmt.Errorf("%w: slot set out of range", ErrInvalidSnapshot)
		}
	}
	if occupied.Intersects(retired) {
		return GenVec[T, G]{}, fmt.Errorf("%w: slot both occupied and retired", ErrInvalidSnapshot)
	}
	if occupied.GetCardinality() != length {
		return GenVec[T, G]{}, fmt.Errorf("%w: length %d but %d occupied slots", ErrInvalidSnapshot, length, occupied.GetCardinality())
	}

	maxGen := uint64(MaxGeneration[G]())
	v := GenVec[T, G]{
		entries:  make([]entry[T, G], slots),
		free:     int(free),
		length:   int(length),
		overflow: overflow,
	}
	vacant := 0
	for i := range v.entries {
		e := &v.entries[i]
		gen := d.uvarint()
		if d.err != nil {
			return GenVec[T, G]{}, d.err
		}
		if gen > maxGen {
			return GenVec[T, G]{}, fmt.Errorf("%w: slot %d generation out of range", ErrInvalidSnapshot, i)
		}
		e.generation = G(gen)
		switch {
		case occupied.Contains(uint32(i)):
			b := d.bytes()
			if d.err != nil {
				return GenVec[T, G]{}, d.err
			}
			if err := codec.Unmarshal(b, &e.value); err != nil {
				return GenVec[T, G]{}, fmt.Errorf("decode slot %d: %w", i, err)
			}
			e.state = slotOccupied
		case retired.Contains(uint32(i)):
			if overflow != Saturating || gen != maxGen {
				return GenVec[T, G]{}, fmt.Errorf("%w: slot %d cannot be retired", ErrInvalidSnapshot, i)
			}
			e.state = slotRetired
		default:
			next := d.uvarint()
			if d.err != nil {
				return GenVec[T, G]{}, d.err
			}
			if next > slots {
				return GenVec[T, G]{}, fmt.Errorf("%w: slot %d free link out of range", ErrInvalidSnapshot, i)
			}
			e.next = int(next)
			e.state = slotVacant
			vacant++
		}
	}
	if d.off != len(d.buf) {
		return GenVec[T, G]{}, fmt.Errorf("%w: %d trailing bytes", ErrInvalidSnapshot, len(d.buf)-d.off)
	}
	if err := v.checkFreeList(vacant); err != nil {
		return GenVec[T, G]{}, err
	}
	return v, nil
}

// checkFreeList walks the free list and verifies that it visits exactly the
// vacant slots, each once.
func (v *GenVec[T, G]) checkFreeList(vacant int) error {
	seen := make([]bool, len(v.entries))
	count := 0
	for link := v.free; link != 0; link = v.entries[link-1].next {
		i := link - 1
		if v.entries[i].state != slotVacant {
			return fmt.Errorf("%w: free list reaches non-vacant slot %d", ErrInvalidSnapshot, i)
		}
		if seen[i] {
			return fmt.Errorf("%w: free list cycles at slot %d", ErrInvalidSnapshot, i)
		}
		seen[i] = true
		count++
	}
	if count != vacant {
		return fmt.Errorf("%w: free list covers %d of %d vacant slots", ErrInvalidSnapshot, count, vacant)
	}
	return nil
}

func appendBytes(dst, b []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(b)))
	return append(dst, b...)
}

// snapshotDecoder reads uvarints and length-prefixed byte strings, keeping
// the first error.
type snapshotDecoder struct {
	buf []byte
	off int
	err error
}

func (d *snapshotDecoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	x, n := binary.Uvarint(d.buf[d.off:])
	if n <= 0 {
		d.err = fmt.Errorf("%w: truncated integer at offset %d", ErrInvalidSnapshot, d.off)
		return 0
	}
	d.off += n
	return x
}

func (d *snapshotDecoder) bytes() []byte {
	n := d.uvarint()
	if d.err != nil {
		return nil
	}
	if n > uint64(len(d.buf)-d.off) {
		d.err = fmt.Errorf("%w: truncated field at offset %d", ErrInvalidSnapshot, d.off)
		return nil
	}
	b := d.buf[d.off : d.off+int(n)]
	d.off += int(n)
	return bytes.Clone(b)
}
