package database

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/loopgo/blobstore"
	"github.com/hupe1980/loopgo/bow"
	"github.com/hupe1980/loopgo/core"
	"github.com/hupe1980/loopgo/internal/hash"
)

// ErrCorruptSnapshot is returned when a snapshot fails validation.
var ErrCorruptSnapshot = errors.New("corrupt database snapshot")

const (
	snapshotMagic   = "LGDB"
	snapshotVersion = 1
	headerSize      = 28
)

// Snapshot layout, little-endian:
//
//	[0:4]   magic "LGDB"
//	[4]     version
//	[5]     compression
//	[6:8]   reserved
//	[8:16]  uncompressed body size
//	[16:24] payload size
//	[24:28] CRC32C of payload
//	[28:]   payload
//
// The body holds the frame set as a portable roaring bitmap, followed by the
// vector of every frame in ascending order: word count, then (word, weight) pairs.

type saveOptions struct {
	compression Compression
}

// SaveOption configures Save.
type SaveOption func(*saveOptions)

// WithCompression selects the payload codec. The default is LZ4.
func WithCompression(c Compression) SaveOption {
	return func(o *saveOptions) { o.compression = c }
}

// Save writes a snapshot of the database to store under name.
func (m *Memory) Save(ctx context.Context, store blobstore.Store, name string, optFns ...SaveOption) error {
	o := saveOptions{compression: CompressionLZ4}
	for _, fn := range optFns {
		fn(&o)
	}

	body, err := m.encode()
	if err != nil {
		return err
	}
	payload, used, err := compress(body, o.compression)
	if err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}

	var hdr [headerSize]byte
	copy(hdr[0:4], snapshotMagic)
	hdr[4] = snapshotVersion
	hdr[5] = byte(used)
	binary.LittleEndian.PutUint64(hdr[8:], uint64(len(body)))
	binary.LittleEndian.PutUint64(hdr[16:], uint64(len(payload)))
	binary.LittleEndian.PutUint32(hdr[24:], hash.CRC32C(payload))

	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(hdr[:]); err != nil {
		_ = w.Close()
		return err
	}
	if _, err := w.Write(payload); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Sync(); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (m *Memory) encode() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	frames, err := m.frames.ToBytes()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	var scratch [12]byte
	binary.LittleEndian.PutUint32(scratch[:4], uint32(len(frames)))
	buf.Write(scratch[:4])
	buf.Write(frames)

	it := m.frames.Iterator()
	for it.HasNext() {
		vec := m.vectors[core.FrameID(it.Next())]
		words := vec.Words()
		binary.LittleEndian.PutUint32(scratch[:4], uint32(len(words)))
		buf.Write(scratch[:4])
		for _, w := range words {
			binary.LittleEndian.PutUint32(scratch[:4], uint32(w))
			binary.LittleEndian.PutUint64(scratch[4:], math.Float64bits(vec[w]))
			buf.Write(scratch[:])
		}
	}
	return buf.Bytes(), nil
}

// Load reads a snapshot written by Save. The result can be queried but not
// handed to a new loopgo.Detector, which requires an empty database.
func Load(ctx context.Context, store blobstore.Store, name string) (*Memory, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(data)
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptSnapshot, fmt.Sprintf(format, args...))
}

func decodeSnapshot(data []byte) (*Memory, error) {
	if len(data) < headerSize {
		return nil, corrupt("short header")
	}
	if string(data[0:4]) != snapshotMagic {
		return nil, corrupt("bad magic")
	}
	if data[4] != snapshotVersion {
		return nil, corrupt("unsupported version %d", data[4])
	}
	rawSize := binary.LittleEndian.Uint64(data[8:])
	payloadSize := binary.LittleEndian.Uint64(data[16:])
	if payloadSize != uint64(len(data)-headerSize) || rawSize > math.MaxInt32 {
		return nil, corrupt("payload size mismatch")
	}
	payload := data[headerSize:]
	if hash.CRC32C(payload) != binary.LittleEndian.Uint32(data[24:]) {
		return nil, corrupt("checksum mismatch")
	}

	body, err := decompress(payload, Compression(data[5]), int(rawSize))
	if err != nil {
		return nil, corrupt("%v", err)
	}
	return decodeBody(body)
}

func decodeBody(body []byte) (*Memory, error) {
	r := bytes.NewReader(body)
	var scratch [12]byte

	readU32 := func() (uint32, error) {
		if _, err := io.ReadFull(r, scratch[:4]); err != nil {
			return 0, corrupt("truncated body")
		}
		return binary.LittleEndian.Uint32(scratch[:4]), nil
	}

	n, err := readU32()
	if err != nil {
		return nil, err
	}
	if int(n) > r.Len() {
		return nil, corrupt("frame set overruns body")
	}
	frameBytes := make([]byte, n)
	_, _ = r.Read(frameBytes)

	frames := roaring.New()
	if err := frames.UnmarshalBinary(frameBytes); err != nil {
		return nil, corrupt("frame set: %v", err)
	}

	m := NewMemory()
	it := frames.Iterator()
	for it.HasNext() {
		frame := core.FrameID(it.Next())
		count, err := readU32()
		if err != nil {
			return nil, err
		}
		if int(count)*12 > r.Len() {
			return nil, corrupt("frame %d overruns body", frame)
		}
		vec := make(bow.Vector, count)
		for range count {
			_, _ = r.Read(scratch[:])
			w := core.WordID(binary.LittleEndian.Uint32(scratch[:4]))
			vec[w] = math.Float64frombits(binary.LittleEndian.Uint64(scratch[4:]))
		}
		m.insert(frame, vec)
	}
	if r.Len() != 0 {
		return nil, corrupt("%d trailing bytes", r.Len())
	}
	return m, nil
}
