// Package checksum streams archive bytes into a CRC-32 (IEEE) accumulator.
package checksum

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"mangashelf/internal/faults"
)

// ChunkSize is the read buffer size. Memory use stays constant regardless
// of file size.
const ChunkSize = 1 << 20

// Sum is the content fingerprint of one file.
type Sum struct {
	CRC32 uint32
	Size  int64
}

// Hex renders the checksum as 8 uppercase hexadecimal digits.
func (s Sum) Hex() string {
	return FormatCRC(s.CRC32)
}

// FormatCRC renders v as 8 uppercase hexadecimal digits.
func FormatCRC(v uint32) string {
	return fmt.Sprintf("%08X", v)
}

// Compute reads path sequentially and returns its CRC-32 and byte count.
// Any open or read failure is reported as faults.ErrIO and no partial sum is
// returned.
func Compute(path string) (Sum, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sum{}, faults.Wrap(faults.ErrIO, "checksum", "open", path, err)
	}
	defer f.Close()

	sum, err := FromReader(f)
	if err != nil {
		return Sum{}, faults.Wrap(faults.ErrIO, "checksum", "read", path, err)
	}
	return sum, nil
}

// FromReader folds everything r yields into a CRC-32 accumulator.
func FromReader(r io.Reader) (Sum, error) {
	h := crc32.NewIEEE()
	buf := make([]byte, ChunkSize)
	n, err := io.CopyBuffer(h, onlyReader{r}, buf)
	if err != nil {
		return Sum{}, err
	}
	return Sum{CRC32: h.Sum32(), Size: n}, nil
}

// onlyReader hides WriterTo so io.CopyBuffer uses the fixed-size buffer.
type onlyReader struct {
	io.Reader
}
