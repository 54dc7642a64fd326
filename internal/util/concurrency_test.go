package util

import (
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestConcurrent(t *testing.T) {
	tests := []struct {
		name        string
		count       int
		fail_every  int
		max         int
		want_ok     int
		want_failed int
	}{
		{"no ops", 0, 0, 4, 0, 0},
		{"all succeed", 10, 0, 3, 10, 0},
		{"some fail", 10, 3, 3, 7, 3},
		{"zero limit runs serially", 5, 0, 0, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := make([]Op[int], tt.count)
			for i := range ops {
				ops[i] = func() (int, error) {
					if tt.fail_every != 0 && (i+1)%tt.fail_every == 0 {
						return 0, fmt.Errorf("op %d failed", i)
					}
					return i, nil
				}
			}

			ok, failed := Concurrent(ops, tt.max)
			if len(ok) != tt.want_ok || len(failed) != tt.want_failed {
				t.Errorf("got %d ok, %d failed", len(ok), len(failed))
			}
		})
	}
}

func TestConcurrentKeepsOrder(t *testing.T) {
	ops := make([]Op[int], 20)
	for i := range ops {
		ops[i] = func() (int, error) {
			time.Sleep(time.Duration(20-i) * time.Millisecond) // later ops finish first
			if i == 5 || i == 12 {
				return 0, errors.New(fmt.Sprint(i))
			}
			return i, nil
		}
	}

	ok, failed := Concurrent(ops, 20)

	var want []int
	for i := range 20 {
		if i != 5 && i != 12 {
			want = append(want, i)
		}
	}
	if !reflect.DeepEqual(ok, want) {
		t.Errorf("results = %v", ok)
	}
	if len(failed) != 2 || failed[0].Error() != "5" || failed[1].Error() != "12" {
		t.Errorf("errors = %v", failed)
	}
}

func TestConcurrentLimit(t *testing.T) {
	var running, peak atomic.Int32
	ops := make([]Op[struct{}], 30)
	for i := range ops {
		ops[i] = func() (struct{}, error) {
			now := running.Add(1)
			for {
				old := peak.Load()
				if now <= old || peak.CompareAndSwap(old, now) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
			return struct{}{}, nil
		}
	}

	Concurrent(ops, 4)
	if peak.Load() > 4 {
		t.Errorf("%d ops ran at once, limit was 4", peak.Load())
	}
}
