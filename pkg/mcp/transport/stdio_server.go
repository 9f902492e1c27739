// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

type readResult struct {
	data []byte
	err  error
}

// StdioServerTransport reads one JSON-RPC message per line from a reader
// (normally os.Stdin) and writes one response per line to a writer (normally
// os.Stdout). Nothing else may write to the writer.
type StdioServerTransport struct {
	reader *bufio.Reader
	writer io.Writer

	mu     sync.Mutex // guards writer and closed
	closed bool

	readCh chan readResult
	once   sync.Once
}

// NewStdioServerTransport creates a stdio transport over r and w.
func NewStdioServerTransport(r io.Reader, w io.Writer) *StdioServerTransport {
	return &StdioServerTransport{
		reader: bufio.NewReaderSize(r, 1024*1024),
		writer: w,
		readCh: make(chan readResult, 1),
	}
}

// startReader runs one reader goroutine for the lifetime of the transport so
// a cancelled Receive never leaks a blocked read.
func (t *StdioServerTransport) startReader() {
	t.once.Do(func() {
		go func() {
			defer close(t.readCh)
			for {
				line, err := t.reader.ReadBytes('\n')
				t.readCh <- readResult{data: line, err: err}
				if err != nil {
					return
				}
			}
		}()
	})
}

// Send writes message and a newline in one write.
func (t *StdioServerTransport) Send(_ context.Context, message []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	buf := make([]byte, 0, len(message)+1)
	buf = append(buf, message...)
	buf = append(buf, '\n')
	if _, err := t.writer.Write(buf); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Receive returns the next non-blank line without its line terminator. A
// final line without a newline is still delivered before io.EOF.
func (t *StdioServerTransport) Receive(ctx context.Context) ([]byte, error) {
	t.startReader()

	for {
		t.mu.Lock()
		closed := t.closed
		t.mu.Unlock()
		if closed {
			return nil, ErrClosed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result, ok := <-t.readCh:
			if !ok {
				return nil, io.EOF
			}
			line := bytes.TrimRight(result.data, "\r\n")
			if len(bytes.TrimSpace(line)) > 0 {
				return line, nil
			}
			if result.err != nil {
				if errors.Is(result.err, io.EOF) {
					return nil, io.EOF
				}
				return nil, fmt.Errorf("read message: %w", result.err)
			}
		}
	}
}

// Close marks the transport closed. The underlying reader and writer stay open.
func (t *StdioServerTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
