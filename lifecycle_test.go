package kagero

import (
	"errors"
	"testing"
	"time"
)

type fakeInterceptor struct {
	name       string
	failFirst  int // ErrModuleNotLoaded returns before success
	installErr error
	removeErr  error
	installs   int
	removals   *[]string
}

func (f *fakeInterceptor) Install() error {
	f.installs++
	if f.installErr != nil {
		return f.installErr
	}
	if f.installs <= f.failFirst {
		return ErrModuleNotLoaded
	}
	return nil
}

func (f *fakeInterceptor) Remove() error {
	if f.removals != nil {
		*f.removals = append(*f.removals, f.name)
	}
	return f.removeErr
}

func (f *fakeInterceptor) Describe() Entry {
	return Entry{Module: "fake.dll", Symbol: f.name, Kind: KindInlinePatch}
}

func TestController_AttachInstallsOnce(t *testing.T) {
	reg := NewRegistry()
	c := NewController(reg, nil)
	h := &fakeInterceptor{name: "Swap"}
	c.Manage(h)

	c.Attach()
	c.Attach() // second attach must not reinstall
	<-c.Done()

	if h.installs != 1 {
		t.Errorf("installs = %d, want 1", h.installs)
	}
	snap := reg.Snapshot()
	if len(snap) != 1 || !snap[0].Active {
		t.Fatalf("registry = %+v, want one active entry", snap)
	}
}

func TestController_DetachReverseOrder(t *testing.T) {
	var removals []string
	c := NewController(nil, nil)
	c.Manage(
		&fakeInterceptor{name: "first", removals: &removals},
		&fakeInterceptor{name: "second", removals: &removals},
		&fakeInterceptor{name: "third", removals: &removals},
	)
	c.Attach()
	if errs := c.Detach(); len(errs) != 0 {
		t.Fatalf("detach errors: %v", errs)
	}

	want := []string{"third", "second", "first"}
	for i := range want {
		if removals[i] != want[i] {
			t.Fatalf("removal order = %v, want %v", removals, want)
		}
	}

	for _, e := range c.Registry().Snapshot() {
		if e.Active {
			t.Errorf("%s still active after detach", e.Symbol)
		}
	}
}

func TestController_FailedInstallRecordedInactive(t *testing.T) {
	var removals []string
	c := NewController(nil, nil)
	broken := errors.New("no executable memory")
	c.Manage(
		&fakeInterceptor{name: "good", removals: &removals},
		&fakeInterceptor{name: "bad", installErr: broken, removals: &removals},
	)
	c.Attach()
	<-c.Done()

	snap := c.Registry().Snapshot()
	if len(snap) != 2 {
		t.Fatalf("registry len = %d, want 2 (failures stay visible)", len(snap))
	}
	if !snap[0].Active || snap[1].Active {
		t.Errorf("active flags = %v/%v, want true/false", snap[0].Active, snap[1].Active)
	}

	c.Detach()
	if len(removals) != 1 || removals[0] != "good" {
		t.Errorf("removals = %v, never-installed hooks must not be removed", removals)
	}
}

func TestController_RetriesWhileModuleNotLoaded(t *testing.T) {
	c := NewController(nil, nil)
	c.retryInterval = time.Millisecond
	h := &fakeInterceptor{name: "Swap", failFirst: 2}
	c.Manage(h)
	c.Attach()
	<-c.Done()

	if h.installs != 3 {
		t.Errorf("installs = %d, want 3 (two misses, one hit)", h.installs)
	}
	if snap := c.Registry().Snapshot(); !snap[0].Active {
		t.Errorf("hook inactive after eventual success")
	}
}

func TestController_DetachCollectsFailures(t *testing.T) {
	c := NewController(nil, nil)
	boom := errors.New("target re-patched")
	c.Manage(
		&fakeInterceptor{name: "ok"},
		&fakeInterceptor{name: "stuck", removeErr: boom},
	)
	c.Attach()

	errs := c.Detach()
	if len(errs) != 1 || !errors.Is(errs[0], boom) {
		t.Errorf("errs = %v, want the single removal failure", errs)
	}
}
