package verify

import (
	"bytes"
	"fmt"
	"strings"

	"mangashelf/internal/faults"
	"mangashelf/internal/fileutil"
)

// FormatExport renders results as export blocks:
//
//	File: <path>
//	Expected: Size=<n>, CRC32=<hex>
//	Actual: Size=<n>, CRC32=<hex>
//	<blank line>
func FormatExport(results []Result) []byte {
	var buf bytes.Buffer
	for _, r := range results {
		fmt.Fprintf(&buf, "File: %s\n", r.Path)
		fmt.Fprintf(&buf, "Expected: %s\n", r.ExpectedText())
		fmt.Fprintf(&buf, "Actual: %s\n", r.ActualText())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Export writes every problem in the report to path. A write failure is
// returned as faults.ErrExportWrite and leaves the report untouched.
func (r *Report) Export(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return faults.Wrap(faults.ErrExportWrite, "verify", "export", "no export path given", nil)
	}
	if err := fileutil.WriteFileAtomic(path, FormatExport(r.Problems()), 0o644); err != nil {
		return faults.Wrap(faults.ErrExportWrite, "verify", "export", path, err)
	}
	return nil
}
