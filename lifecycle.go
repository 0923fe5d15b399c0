package kagero

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Interceptor is one interception managed by a Controller.
type Interceptor interface {
	Install() error
	Remove() error
	// Describe returns the diagnostic projection of the interception.
	// ID and Active are filled in by the controller's registry.
	Describe() Entry
}

type managedHook struct {
	hook      Interceptor
	id        string
	installed bool
}

// Controller drives attach/detach for a set of interceptions. Installation
// runs on a background worker, the way an injected module defers its setup to
// a detached thread, and the target keeps executing its true original code
// until each install fully completes.
type Controller struct {
	mu       sync.Mutex
	attach   sync.Once
	attached atomic.Bool
	registry *Registry
	logger   *log.Logger
	items    []*managedHook
	done     chan struct{}

	// retry knobs for targets whose module is not mapped yet at attach time
	retryInterval time.Duration
	maxAttempts   int
}

func NewController(reg *Registry, logger *log.Logger) *Controller {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Controller{
		registry:      reg,
		logger:        logger,
		done:          make(chan struct{}),
		retryInterval: 250 * time.Millisecond,
		maxAttempts:   20,
	}
}

// Manage queues interceptions for installation. Must be called before Attach.
func (c *Controller) Manage(hooks ...Interceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range hooks {
		c.items = append(c.items, &managedHook{hook: h})
	}
}

// Attach starts installation exactly once; repeated calls are no-ops. The
// host may trigger process attach more than once, so the guard lives here
// rather than in the caller.
func (c *Controller) Attach() {
	c.attach.Do(func() {
		c.attached.Store(true)
		go c.installAll()
	})
}

// Done is closed after the install worker has processed every queued hook,
// successfully or not.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) installAll() {
	defer close(c.done)
	c.mu.Lock()
	items := make([]*managedHook, len(c.items))
	copy(items, c.items)
	c.mu.Unlock()

	for _, m := range items {
		err := c.installWithRetry(m.hook)
		e := m.hook.Describe()
		e.Active = err == nil

		c.mu.Lock()
		m.id = c.registry.Add(e)
		m.installed = err == nil
		c.mu.Unlock()

		if err != nil {
			c.logf("install %s!%s failed: %v", e.Module, e.Symbol, err)
			continue
		}
		c.logf("installed %s!%s", e.Module, e.Symbol)
	}
}

func (c *Controller) installWithRetry(h Interceptor) error {
	var err error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(c.retryInterval)
		}
		err = h.Install()
		if !errors.Is(err, ErrModuleNotLoaded) {
			return err
		}
	}
	return err
}

// Detach removes installed hooks in reverse install order. Failures are
// collected and reported, never re-thrown: detach often runs inside an
// abnormal shutdown path that must not be made worse.
func (c *Controller) Detach() []error {
	// wait out the install worker, but only if it was ever started
	if c.attached.Load() {
		<-c.done
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for i := len(c.items) - 1; i >= 0; i-- {
		m := c.items[i]
		if !m.installed {
			continue
		}
		m.installed = false
		c.registry.SetActive(m.id, false)
		if err := m.hook.Remove(); err != nil && !errors.Is(err, ErrNotInstalled) {
			e := m.hook.Describe()
			c.logf("remove %s!%s failed: %v", e.Module, e.Symbol, err)
			errs = append(errs, err)
		}
	}
	return errs
}

// Registry exposes the controller's diagnostic surface.
func (c *Controller) Registry() *Registry {
	return c.registry
}

func (c *Controller) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
