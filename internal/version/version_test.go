package version

import "testing"

func TestGet_LinkerOverride(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.2.3"
	if got := Get(); got != "v1.2.3" {
		t.Errorf("Get() = %q, want v1.2.3", got)
	}
}

func TestGet_NeverEmpty(t *testing.T) {
	if Get() == "" {
		t.Error("Get() returned an empty version")
	}
}
