package utils

import (
	"io"
	"sync"
)

// FlushingWriter pushes report output through to the terminal as soon as it is
// written, flushing the wrapped writer whenever it supports flushing.
type FlushingWriter struct {
	destination io.Writer
	writeMutex  sync.Mutex
}

// NewFlushingWriter wraps destination in a FlushingWriter. A nil destination
// yields nil, and a destination that is already a FlushingWriter is returned
// unchanged.
func NewFlushingWriter(destination io.Writer) io.Writer {
	if destination == nil {
		return nil
	}
	if _, alreadyWrapped := destination.(*FlushingWriter); alreadyWrapped {
		return destination
	}
	return &FlushingWriter{destination: destination}
}

// Write forwards data to the destination and flushes it on success.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.destination == nil {
		return 0, nil
	}

	flushingWriter.writeMutex.Lock()
	defer flushingWriter.writeMutex.Unlock()

	writtenByteCount, writeError := flushingWriter.destination.Write(data)
	if writeError != nil {
		return writtenByteCount, writeError
	}

	if flushableDestination, supportsFlush := flushingWriter.destination.(interface{ Flush() error }); supportsFlush {
		if flushError := flushableDestination.Flush(); flushError != nil {
			return writtenByteCount, flushError
		}
	}

	return writtenByteCount, nil
}
