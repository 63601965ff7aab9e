package mongo

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestChunk(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}

	got := Chunk(ids, 10)
	if len(got) != 2 || len(got[0]) != 10 || !reflect.DeepEqual(got[1], []string{"k", "l"}) {
		t.Errorf("Chunk(12, 10) = %v", got)
	}

	if got := Chunk(nil, 10); len(got) != 0 {
		t.Errorf("Chunk(nil) = %v, want empty", got)
	}
	if got := Chunk(ids[:3], 0); len(got) != 1 {
		t.Errorf("Chunk with size 0 should return a single group, got %v", got)
	}
}

func TestWithTimeout_KeepsEarlierDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	ctx, cancel2 := WithTimeout(parent, time.Hour)
	defer cancel2()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected deadline")
	}
	if time.Until(deadline) > time.Second {
		t.Errorf("deadline extended past parent: %v", time.Until(deadline))
	}
}

func TestWithTimeout_AddsDeadline(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected a deadline")
	}
}
