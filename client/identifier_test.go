package client

import (
	"errors"
	"testing"
)

func TestAcquireSequential(t *testing.T) {
	p := newIDPool()
	// 連続するリクエストは昇順の識別子を得る
	for want := uint8(0); want < 5; want++ {
		id, err := p.acquire("ep")
		if err != nil {
			t.Fatalf("acquire failed: %v", err)
		}
		if id != want {
			t.Errorf("acquire = %d, want %d", id, want)
		}
	}
}

func TestAcquireSkipsReleasedUntilWrap(t *testing.T) {
	p := newIDPool()
	for i := 0; i < 3; i++ {
		if _, err := p.acquire("ep"); err != nil {
			t.Fatal(err)
		}
	}
	p.release("ep", 1)
	// カーソルは3にあるため、返却済みの1よりも先に3が出る
	id, err := p.acquire("ep")
	if err != nil {
		t.Fatal(err)
	}
	if id != 3 {
		t.Errorf("acquire = %d, want 3", id)
	}
}

func TestAcquireExhaustion(t *testing.T) {
	p := newIDPool()
	for i := 0; i < 256; i++ {
		if _, err := p.acquire("ep"); err != nil {
			t.Fatalf("acquire %d failed: %v", i, err)
		}
	}
	if _, err := p.acquire("ep"); !errors.Is(err, ErrNoFreeIdentifier) {
		t.Errorf("error = %v, want ErrNoFreeIdentifier", err)
	}
	// 1つ返却すれば再び借りられる（巡回走査で再発見される）
	p.release("ep", 100)
	id, err := p.acquire("ep")
	if err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	if id != 100 {
		t.Errorf("acquire = %d, want 100", id)
	}
}

func TestEndpointsIsolated(t *testing.T) {
	p := newIDPool()
	a, _ := p.acquire("ep-a")
	b, _ := p.acquire("ep-b")
	if a != 0 || b != 0 {
		t.Errorf("ids = %d %d, want 0 0 (independent pools)", a, b)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	p := newIDPool()
	id, _ := p.acquire("ep")
	p.release("ep", id)
	p.release("ep", id) // 二重返却はカウントを壊さない
	p.release("other", 9)

	e := p.endpoints["ep"]
	if e.inUse != 0 {
		t.Errorf("inUse = %d, want 0", e.inUse)
	}
}
