package ioutil

import (
	"bytes"
	"io"
)

// CountWriter wraps an io.Writer and counts bytes and newlines written.
type CountWriter struct {
	W     io.Writer
	Count int64
	Lines int64
}

func (cw *CountWriter) Write(p []byte) (int, error) {
	n, err := cw.W.Write(p)
	cw.Count += int64(n)
	cw.Lines += int64(bytes.Count(p[:n], []byte{'\n'}))
	return n, err
}
