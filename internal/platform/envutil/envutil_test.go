package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("CB_TEST_DUR", "1500ms")
	if got := Duration("CB_TEST_DUR", time.Second); got != 1500*time.Millisecond {
		t.Fatalf("got=%v", got)
	}
	t.Setenv("CB_TEST_DUR", "7")
	if got := Duration("CB_TEST_DUR", time.Second); got != 7*time.Second {
		t.Fatalf("got=%v", got)
	}
	t.Setenv("CB_TEST_DUR", "soon")
	if got := Duration("CB_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("got=%v", got)
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("CB_TEST_BOOL", "on")
	if !Bool("CB_TEST_BOOL", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("CB_TEST_BOOL", "nope")
	if Bool("CB_TEST_BOOL", true) {
		t.Fatalf("expected false")
	}
	t.Setenv("CB_TEST_INT", "x")
	if Int("CB_TEST_INT", 3) != 3 {
		t.Fatalf("expected default")
	}
	if String("CB_TEST_UNSET_VALUE", "d") != "d" {
		t.Fatalf("expected default")
	}
}
