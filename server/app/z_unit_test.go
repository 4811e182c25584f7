// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubComp struct {
	runErr   error
	stop     chan struct{}
	shutdown int
}

func (s *stubComp) Run() error {
	if s.runErr != nil {
		return s.runErr
	}
	<-s.stop
	return nil
}

func (s *stubComp) Shutdown(ctx context.Context) error {
	s.shutdown++
	close(s.stop)
	return nil
}

func TestRunContextShutsDownInOrder(t *testing.T) {
	comp := &stubComp{stop: make(chan struct{})}
	var closed []string
	hook := NewHook(func() { closed = append(closed, "runtime") }, func() { closed = append(closed, "logger") })
	a := NewWith(comp, hook)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.RunContext(ctx); err != nil {
		t.Fatalf("normal stop must return nil, got %v", err)
	}
	if comp.shutdown != 1 || len(closed) != 2 || closed[0] != "runtime" {
		t.Fatalf("unexpected shutdown: %d %v", comp.shutdown, closed)
	}
	if err := hook.Shutdown(context.Background()); err != nil || len(closed) != 2 {
		t.Fatalf("second shutdown must be a no-op")
	}
}

func TestRunContextReturnsComponentError(t *testing.T) {
	boom := errors.New("listen failed")
	hook := NewHook()
	a := NewWith(&stubComp{runErr: boom, stop: make(chan struct{})}, hook)
	if err := a.RunContext(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("want component error, got %v", err)
	}
}
