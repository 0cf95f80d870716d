package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("custom logger was not called")
	}

	// nil installs a no-op logger
	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("no-op logger should not have triggered callback")
	}
}

func TestLogfDefault(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()
	Logf("test message: %s", "value")
}

func TestStagef(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	Stagef("normalize", "merged %d variant names", 4)
	if want := "[normalize] merged 4 variant names"; got != want {
		t.Errorf("Stagef produced %q, want %q", got, want)
	}
}
