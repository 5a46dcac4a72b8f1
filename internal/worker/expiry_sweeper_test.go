package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExpirer devuelve los resultados en orden; después, cero.
type fakeExpirer struct {
	mu      sync.Mutex
	results []int
	errAt   int
	calls   int
}

func (f *fakeExpirer) ExpireDue(_ context.Context, _ time.Time, _ int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.errAt == f.calls {
		return 1, errors.New("fallo parcial")
	}
	if len(f.results) == 0 {
		return 0, nil
	}
	n := f.results[0]
	f.results = f.results[1:]
	return n, nil
}

func (f *fakeExpirer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestSweep_DrenaLotesCompletos(t *testing.T) {
	f := &fakeExpirer{results: []int{2, 2, 1}}
	s := NewExpirySweeper(f, time.Minute, 2, zerolog.Nop())

	assert.Equal(t, 5, s.Sweep(context.Background()))
	assert.Equal(t, 3, f.callCount())
}

func TestSweep_ErrorCortaElBarrido(t *testing.T) {
	f := &fakeExpirer{results: []int{2, 2, 2}, errAt: 2}
	s := NewExpirySweeper(f, time.Minute, 2, zerolog.Nop())

	assert.Equal(t, 3, s.Sweep(context.Background()))
	assert.Equal(t, 2, f.callCount())
}

func TestRun_BarreAlArrancarYTerminaConContexto(t *testing.T) {
	f := &fakeExpirer{}
	s := NewExpirySweeper(f, 5*time.Millisecond, 10, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return f.callCount() >= 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run no terminó al cancelar el contexto")
	}
}
