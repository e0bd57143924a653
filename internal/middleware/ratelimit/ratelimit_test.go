package ratelimit

import (
	"testing"
	"time"
)

func TestAllow_ExhaustsBudget(t *testing.T) {
	l := New(Config{RequestsPerMinute: 3, Window: time.Hour})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.allow("1.2.3.4") {
		t.Error("budget exhausted, request should be denied")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l := New(Config{RequestsPerMinute: 1, Window: time.Hour})
	defer l.Stop()

	if !l.allow("1.2.3.4") {
		t.Fatal("first client should be allowed")
	}
	if !l.allow("5.6.7.8") {
		t.Error("a different client must have its own budget")
	}
	if l.allow("1.2.3.4") {
		t.Error("first client's budget is spent")
	}
}

func TestAllow_Refills(t *testing.T) {
	l := New(Config{RequestsPerMinute: 2, Window: 20 * time.Millisecond})
	defer l.Stop()

	l.allow("1.2.3.4")
	l.allow("1.2.3.4")
	if l.allow("1.2.3.4") {
		t.Fatal("budget should be empty")
	}

	time.Sleep(30 * time.Millisecond)

	if !l.allow("1.2.3.4") {
		t.Error("tokens should have refilled after the window")
	}
}
