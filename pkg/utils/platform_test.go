//go:build !mobile && !android

package utils

import "testing"

func TestIsMobileEmulation(t *testing.T) {
	t.Setenv("GARDEN_MOBILE_EMULATE", "")
	if IsMobile() {
		t.Error("desktop build should not report mobile")
	}

	t.Setenv("GARDEN_MOBILE_EMULATE", "1")
	if !IsMobile() {
		t.Error("GARDEN_MOBILE_EMULATE=1 should force mobile mode")
	}
}

func TestEnsureStorageDirDesktop(t *testing.T) {
	if err := EnsureStorageDir("garden_test"); err != nil {
		t.Fatalf("EnsureStorageDir returned error: %v", err)
	}
	if got := GetStoragePath("garden_test"); got != "" {
		t.Errorf("GetStoragePath = %q, want empty on desktop", got)
	}
}
