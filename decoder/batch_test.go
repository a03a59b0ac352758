package decoder

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDecoder struct {
	next  Decoder
	calls atomic.Int64
}

func (c *countingDecoder) Decode(kind string, year int, code string) (*Record, error) {
	c.calls.Add(1)
	return c.next.Decode(kind, year, code)
}

func TestDecodeAllKeepsOrderAndFailures(t *testing.T) {
	p := testPipeline(t)
	codes := []string{"CA0EQ94R", "CXYZ", "DH0EQ05", "CAMPUS", "SA0EQ99T"}

	results, err := DecodeAll(context.Background(), p, "othr", 1994, codes, BatchOptions{Workers: 2})
	require.NoError(t, err)
	require.Len(t, results, len(codes))

	for i, res := range results {
		assert.Equal(t, codes[i], res.Code)
	}
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrUnparsedRemainder)
	assert.Nil(t, results[1].Record)
	assert.Equal(t, 2005, results[2].Record.Facts["year"])
	assert.Equal(t, "key", results[3].Record.Facts["field"])
	assert.Equal(t, "total", results[4].Record.Facts["measure"])
}

func TestDecodeAllFailFast(t *testing.T) {
	p := testPipeline(t)

	_, err := DecodeAll(context.Background(), p, "othr", 1994, []string{"CXYZ"}, BatchOptions{Workers: 1, FailFast: true})
	require.Error(t, err)
	assert.True(t, IsDecodeFailure(err))
}

func TestDecodeAllConfigErrorAborts(t *testing.T) {
	p := testPipeline(t)

	_, err := DecodeAll(context.Background(), p, "unknown", 1994, []string{"CA", "CB"}, BatchOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoGrammar)
}

func TestDecodeAllCancelled(t *testing.T) {
	p := testPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DecodeAll(ctx, p, "othr", 1994, []string{"CA0EQ94R"}, BatchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCachedPipeline(t *testing.T) {
	counter := &countingDecoder{next: testPipeline(t)}
	cached, err := NewCachedPipeline(counter, 16)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		rec, err := cached.Decode("othr", 1994, "CA0EQ94R")
		require.NoError(t, err)
		assert.Equal(t, "all", rec.Facts["group"])

		_, err = cached.Decode("othr", 1994, "CXYZ")
		assert.ErrorIs(t, err, ErrUnparsedRemainder)
	}
	assert.Equal(t, int64(2), counter.calls.Load())
	assert.Equal(t, 2, cached.Len())

	// Same code in another year is a separate entry.
	_, err = cached.Decode("othr", 1995, "CA0EQ94R")
	require.NoError(t, err)
	assert.Equal(t, int64(3), counter.calls.Load())

	// Configuration errors are never cached.
	_, err = cached.Decode("unknown", 1994, "CA")
	assert.ErrorIs(t, err, ErrNoGrammar)
	_, err = cached.Decode("unknown", 1994, "CA")
	assert.ErrorIs(t, err, ErrNoGrammar)
	assert.Equal(t, int64(5), counter.calls.Load())
	assert.Equal(t, 3, cached.Len())
}

func TestNewCachedPipelineRejectsSize(t *testing.T) {
	_, err := NewCachedPipeline(testPipeline(t), 0)
	assert.Error(t, err)
}
