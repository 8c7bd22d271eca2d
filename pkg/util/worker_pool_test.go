package util_test

import (
	"sync"
	"testing"

	"github.com/Determinant/cordwood/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestWorkerPool(t *testing.T) {
	for _, size := range []int{0, 1, 4} {
		p, err := util.NewWorkerPool(size)
		require.NoError(t, err)

		var (
			wg  sync.WaitGroup
			cnt atomic.Int64
		)
		for range 16 {
			wg.Add(1)
			require.NoError(t, p.Submit(func() {
				defer wg.Done()
				cnt.Inc()
			}))
		}
		wg.Wait()
		require.EqualValues(t, 16, cnt.Load(), size)

		p.Release()
		require.ErrorIs(t, p.Submit(func() {}), util.ErrPoolClosed)
	}
}
