package capture

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// dayBucketFormat groups capture files into one directory per calendar
	// day (ddMMyyyy).
	dayBucketFormat = "02012006"

	// timeSuffixFormat is the HHMMSS portion of a capture file name.
	timeSuffixFormat = "150405"
)

// graphWriter owns the output file of one capture session and every dot
// format concern: path construction, day-bucket creation, header, edge and
// footer lines. The produced files can be rendered with Graphviz or sliced
// with standard text tools.
type graphWriter struct {
	path string
	file *os.File
	buf  *bufio.Writer
}

// newGraphWriter creates the day bucket if needed, opens the session file
// and writes the digraph header. Bucket creation is idempotent so racing
// sessions on other goroutines never fail each other. A second session from
// the same thread within the same second gets a random suffix instead of
// overwriting the first file.
func newGraphWriter(root, trigger string, threadID int64, start time.Time) (*graphWriter, error) {
	bucket := filepath.Join(root, start.Format(dayBucketFormat))
	if err := os.MkdirAll(bucket, 0755); err != nil {
		return nil, fmt.Errorf("failed to create capture directory: %w", err)
	}

	base := fmt.Sprintf("Thread_%d_%s_%s", threadID, trigger, start.Format(timeSuffixFormat))
	path := filepath.Join(bucket, base+".dot")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if os.IsExist(err) {
		suffix, nerr := gonanoid.New(6)
		if nerr != nil {
			return nil, fmt.Errorf("failed to generate capture file suffix: %w", nerr)
		}
		path = filepath.Join(bucket, base+"_"+suffix+".dot")
		file, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create capture file: %w", err)
	}

	w := &graphWriter{
		path: path,
		file: file,
		buf:  bufio.NewWriter(file),
	}

	if _, err := fmt.Fprintf(w.buf, "digraph %s{\n", trigger); err != nil {
		w.discard()
		return nil, fmt.Errorf("failed to write graph header: %w", err)
	}

	return w, nil
}

// callEdge records a method entry as caller->callee, labeled with the
// sequence number and the called method name.
func (w *graphWriter) callEdge(caller, callee string, seq int64, method string) error {
	if _, err := fmt.Fprintf(w.buf, "%s->%s[label=\"%d:%s\"]\n", caller, callee, seq, method); err != nil {
		return &WriteError{Path: w.path, Err: err}
	}
	return nil
}

// returnEdge records a method exit as the popped frame back to its caller.
// Return edges are dashed so calls and returns stay distinguishable in the
// rendered graph.
func (w *graphWriter) returnEdge(from, to string, seq int64) error {
	if _, err := fmt.Fprintf(w.buf, "%s->%s[label=\"%d\", style=dashed]\n", from, to, seq); err != nil {
		return &WriteError{Path: w.path, Err: err}
	}
	return nil
}

// closeGraph writes the closing marker, flushes and closes the file. The
// file descriptor is released on every path, even when the footer or flush
// fails.
func (w *graphWriter) closeGraph() error {
	_, werr := w.buf.WriteString("}\n")
	if ferr := w.buf.Flush(); werr == nil {
		werr = ferr
	}
	cerr := w.file.Close()
	if werr != nil {
		return &WriteError{Path: w.path, Err: werr}
	}
	if cerr != nil {
		return &WriteError{Path: w.path, Err: cerr}
	}
	return nil
}

// discard flushes whatever was emitted so far and closes the file without a
// footer. Used on the violation and write-failure paths, where the session
// is being disabled and the file is already suspect.
func (w *graphWriter) discard() {
	_ = w.buf.Flush()
	_ = w.file.Close()
}
