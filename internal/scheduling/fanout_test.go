package scheduling

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestSideChannelSwallowsErrors(t *testing.T) {
	side := NewSideChannel(zap.NewNop())
	ran := make(chan struct{})
	side.Go("failing-task", func() error {
		close(ran)
		return errors.New("downstream unavailable")
	})
	side.Wait()
	select {
	case <-ran:
	default:
		t.Fatal("task did not run")
	}
}

func TestSideChannelRecoversPanics(t *testing.T) {
	side := NewSideChannel(zap.NewNop())
	side.Go("panicking-task", func() error {
		panic("boom")
	})
	// must not crash the process
	side.Wait()
}

func TestSideChannelWaitsForAllTasks(t *testing.T) {
	side := NewSideChannel(zap.NewNop())
	results := make(chan int, 3)
	for i := 0; i < 3; i++ {
		i := i
		side.Go("task", func() error {
			results <- i
			return nil
		})
	}
	side.Wait()
	if len(results) != 3 {
		t.Fatalf("completed tasks = %d, want 3", len(results))
	}
}
