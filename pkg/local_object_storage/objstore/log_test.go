package objstore_test

import (
	"encoding/json"
	"testing"

	"github.com/Determinant/cordwood/internal/testutil"
	"github.com/Determinant/cordwood/pkg/local_object_storage/objstore"
	"github.com/Determinant/cordwood/pkg/local_object_storage/objstore/memspace"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCompact_OperationLog(t *testing.T) {
	l, lb := testutil.NewBufferedLogger(t, zap.DebugLevel)

	s, err := objstore.New[*blob](memspace.New(), decodeBlob, objstore.WithLogger(l))
	require.NoError(t, err)

	ref, err := s.Put(newBlob("hello"))
	require.NoError(t, err)
	require.EqualValues(t, objstore.HeaderSize+objstore.ChunkHeaderSize, ref.Addr())

	require.NoError(t, s.Free(ref.Addr()))

	const msg = "local object storage operation"

	lb.AssertContains(testutil.LogEntry{
		Level:   zap.DebugLevel,
		Message: msg,
		Fields: map[string]any{
			"component": "ObjectStore",
			"address":   json.Number("48"),
			"op":        "PUT",
			"type":      "compact",
			"size":      json.Number("13"),
		},
	})
	lb.AssertContains(testutil.LogEntry{
		Level:   zap.DebugLevel,
		Message: msg,
		Fields: map[string]any{
			"component": "ObjectStore",
			"address":   json.Number("48"),
			"op":        "FREE",
			"type":      "compact",
			"size":      json.Number("16"),
		},
	})

	require.Len(t, lb.Filter(msg), 2)
}
