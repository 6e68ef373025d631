package utils_test

import (
	"bufio"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fleetctl/internal/utils"
)

type failingFlushDestination struct {
	bytes.Buffer
}

func (destination *failingFlushDestination) Flush() error {
	return errors.New("flush failed")
}

func TestFlushingWriter(testInstance *testing.T) {
	testInstance.Run("nil_destination", func(testInstance *testing.T) {
		require.Nil(testInstance, utils.NewFlushingWriter(nil))
	})

	testInstance.Run("wrapping_is_idempotent", func(testInstance *testing.T) {
		wrappedWriter := utils.NewFlushingWriter(&bytes.Buffer{})
		require.Same(testInstance, wrappedWriter, utils.NewFlushingWriter(wrappedWriter))
	})

	testInstance.Run("buffered_destination_is_flushed", func(testInstance *testing.T) {
		destination := &bytes.Buffer{}
		bufferedDestination := bufio.NewWriterSize(destination, 4096)

		writer := utils.NewFlushingWriter(bufferedDestination)
		bytesWritten, writeError := writer.Write([]byte("password: "))
		require.NoError(testInstance, writeError)
		require.Equal(testInstance, 10, bytesWritten)
		require.Equal(testInstance, "password: ", destination.String())
	})

	testInstance.Run("appends_to_existing_content", func(testInstance *testing.T) {
		destination := bytes.NewBufferString("earlier\n")
		writer := utils.NewFlushingWriter(destination)
		_, writeError := writer.Write([]byte("later\n"))
		require.NoError(testInstance, writeError)
		require.Equal(testInstance, "earlier\nlater\n", destination.String())
	})

	testInstance.Run("flush_error_is_reported", func(testInstance *testing.T) {
		writer := utils.NewFlushingWriter(&failingFlushDestination{})
		bytesWritten, writeError := writer.Write([]byte("data"))
		require.Error(testInstance, writeError)
		require.Equal(testInstance, 4, bytesWritten)
	})
}
