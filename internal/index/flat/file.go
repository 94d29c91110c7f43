package flat

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kailas-cloud/nurseally/internal/domain"
)

const (
	fileMagic   = "NAFX"
	fileVersion = 1

	// maxFloats bounds allocations when reading untrusted headers.
	maxFloats = 1 << 28
)

// header is the fixed little-endian prefix of an index file.
type header struct {
	Magic   [4]byte
	Version uint16
	Metric  uint8
	_       uint8
	Dim     uint32
	Count   uint32
}

// WriteTo serializes the index: header followed by Count*Dim float32 values.
func (x *Index) WriteTo(w io.Writer) (int64, error) {
	h := header{Version: fileVersion, Metric: uint8(x.metric), Dim: uint32(x.dim), Count: uint32(x.Len())}
	copy(h.Magic[:], fileMagic)

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return 0, fmt.Errorf("write index header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, x.data); err != nil {
		return 0, fmt.Errorf("write index vectors: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("flush index: %w", err)
	}
	return int64(binary.Size(h) + 4*len(x.data)), nil
}

// ReadFrom decodes an index written by WriteTo.
func ReadFrom(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)

	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("read index header: %w: %w", domain.ErrInvalidArtifact, err)
	}
	if string(h.Magic[:]) != fileMagic {
		return nil, fmt.Errorf("bad index magic %q: %w", h.Magic[:], domain.ErrInvalidArtifact)
	}
	if h.Version != fileVersion {
		return nil, fmt.Errorf("unsupported index version %d: %w", h.Version, domain.ErrInvalidArtifact)
	}
	metric := Metric(h.Metric)
	if metric != L2 && metric != Cosine {
		return nil, fmt.Errorf("unknown index metric %d: %w", h.Metric, domain.ErrInvalidArtifact)
	}
	total := uint64(h.Dim) * uint64(h.Count)
	if total > maxFloats || (h.Dim == 0 && h.Count > 0) {
		return nil, fmt.Errorf("index size %dx%d: %w", h.Count, h.Dim, domain.ErrInvalidArtifact)
	}

	x := &Index{dim: int(h.Dim), metric: metric, data: make([]float32, total)}
	if err := binary.Read(br, binary.LittleEndian, x.data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("index truncated: %w", domain.ErrInvalidArtifact)
		}
		return nil, fmt.Errorf("read index vectors: %w", err)
	}
	return x, nil
}

// Save writes the index to path, replacing any existing file.
func (x *Index) Save(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	if _, err = x.WriteTo(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close index file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename index file: %w", err)
	}
	return nil
}

// Load reads an index file.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadFrom(f)
}
