package cerebras

import (
	"bufio"
	"bytes"
	"io"
)

// sseFrame is one decoded server-sent event: the concatenated data payload
// plus the optional event tag.
type sseFrame struct {
	event string
	data  []byte
}

// sseDecoder turns a raw byte stream into a sequence of frames. It is a
// single-pass reader: chunk boundaries in the underlying stream are
// invisible to callers, and it only fails on I/O errors from the body.
type sseDecoder struct {
	r *bufio.Reader
}

func newSSEDecoder(r io.Reader) *sseDecoder {
	return &sseDecoder{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next frame's payload. Multiple `data:` lines within one
// frame are joined with `\n`, per the SSE spec. Comment lines and unknown
// field labels are dropped. A partial frame at EOF is discarded: without
// its terminating blank line it cannot be a complete event.
func (d *sseDecoder) Next() (sseFrame, error) {
	var frame sseFrame
	var dataLines [][]byte
	for {
		line, err := d.r.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return sseFrame{}, io.EOF
			}
			return sseFrame{}, err
		}

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			if len(dataLines) == 0 {
				continue
			}
			frame.data = bytes.Join(dataLines, []byte("\n"))
			return frame, nil
		}
		if line[0] == ':' {
			continue
		}
		if v, ok := fieldValue(line, "event"); ok {
			frame.event = string(v)
			continue
		}
		if v, ok := fieldValue(line, "data"); ok {
			dataLines = append(dataLines, append([]byte(nil), v...))
		}
	}
}

func fieldValue(line []byte, field string) ([]byte, bool) {
	prefix := []byte(field + ":")
	if !bytes.HasPrefix(line, prefix) {
		return nil, false
	}
	v := line[len(prefix):]
	if len(v) > 0 && v[0] == ' ' {
		v = v[1:]
	}
	return v, true
}
