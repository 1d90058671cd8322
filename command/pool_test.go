package command

import "testing"

func TestPoolReleaseClearsSignalState(t *testing.T) {
	p := NewPool(2)
	c := p.Acquire()
	c.Priority = 7
	c.Signal = true
	c.Type = "x"

	p.Release(c)

	reacquired := p.Acquire()
	if reacquired.Priority != 0 || reacquired.Signal {
		t.Fatalf("released command fields not cleared: %+v", reacquired)
	}
}

func TestPoolAcquireReusesReleasedInstances(t *testing.T) {
	p := NewPool(1)
	c1 := p.Acquire()
	p.Release(c1)
	c2 := p.Acquire()

	if c1 != c2 {
		t.Fatal("expected the pool to reuse the released instance rather than allocate a new one")
	}
}
