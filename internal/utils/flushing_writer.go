package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

type syncer interface {
	Sync() error
}

// FlushingWriter forwards each write to a caller-owned writer and pushes buffered data through
// immediately. The underlying writer is never closed.
type FlushingWriter struct {
	destination io.Writer
	mutex       sync.Mutex
}

// NewFlushingWriter wraps destination. A nil destination yields nil, and an existing FlushingWriter is returned as is.
func NewFlushingWriter(destination io.Writer) io.Writer {
	if destination == nil {
		return nil
	}
	if existingWriter, alreadyWrapped := destination.(*FlushingWriter); alreadyWrapped {
		return existingWriter
	}
	return &FlushingWriter{destination: destination}
}

// Write appends data to the destination and flushes it when the destination buffers.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	if writer == nil || writer.destination == nil {
		return len(data), nil
	}

	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	bytesWritten, writeError := writer.destination.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	switch bufferedDestination := writer.destination.(type) {
	case flusher:
		return bytesWritten, bufferedDestination.Flush()
	case syncer:
		// Terminals and pipes reject fsync; the bytes are already delivered.
		_ = bufferedDestination.Sync()
	}
	return bytesWritten, nil
}
