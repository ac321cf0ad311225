package config

import (
	"os"
	"path/filepath"
	"testing"
)

func withEnv(t *testing.T, name, value string) {
	t.Helper()
	prev, had := os.LookupEnv(name)
	if err := os.Setenv(name, value); err != nil {
		t.Fatalf("setenv %s: %v", name, err)
	}
	t.Cleanup(func() {
		if had {
			os.Setenv(name, prev)
		} else {
			os.Unsetenv(name)
		}
	})
}

func withUnsetEnv(t *testing.T, name string) {
	t.Helper()
	prev, had := os.LookupEnv(name)
	os.Unsetenv(name)
	t.Cleanup(func() {
		if had {
			os.Setenv(name, prev)
		}
	})
}

func TestOptionalTrimmedPathFromEnvUnset(t *testing.T) {
	withUnsetEnv(t, "LUBAN_TEST_ROOT")
	_, ok, err := optionalTrimmedPathFromEnv("LUBAN_TEST_ROOT")
	if err != nil || ok {
		t.Fatalf("expected ok=false, err=nil, got ok=%v err=%v", ok, err)
	}
}

func TestOptionalTrimmedPathFromEnvEmptyErrors(t *testing.T) {
	withEnv(t, "LUBAN_TEST_ROOT", "   ")
	_, _, err := optionalTrimmedPathFromEnv("LUBAN_TEST_ROOT")
	if err == nil {
		t.Fatalf("expected an error for a set-but-empty env var")
	}
}

func TestOptionalTrimmedPathFromEnvTrims(t *testing.T) {
	withEnv(t, "LUBAN_TEST_ROOT", "  a-root  ")
	value, ok, err := optionalTrimmedPathFromEnv("LUBAN_TEST_ROOT")
	if err != nil || !ok || value != "a-root" {
		t.Fatalf("expected trimmed value, got %q ok=%v err=%v", value, ok, err)
	}
}

func TestResolveRootsUsesEnvOverride(t *testing.T) {
	withEnv(t, CodexRootEnv, " codex ")
	withUnsetEnv(t, LubanRootEnv)
	withUnsetEnv(t, AmpRootEnv)
	withUnsetEnv(t, ClaudeRootEnv)
	withUnsetEnv(t, DroidRootEnv)
	withUnsetEnv(t, CodexBinEnv)
	withUnsetEnv(t, ClaudeBinEnv)
	withUnsetEnv(t, "XDG_CONFIG_HOME")

	roots, err := ResolveRoots()
	if err != nil {
		t.Fatalf("ResolveRoots: %v", err)
	}
	if roots.CodexRoot != "codex" {
		t.Fatalf("expected codex root override to win, got %q", roots.CodexRoot)
	}
	if roots.CodexBin != "codex" {
		t.Fatalf("expected default codex binary name, got %q", roots.CodexBin)
	}
}

func TestResolveRootsAmpFallsBackToXDGBeforeHome(t *testing.T) {
	withUnsetEnv(t, AmpRootEnv)
	withUnsetEnv(t, LubanRootEnv)
	withUnsetEnv(t, CodexRootEnv)
	withUnsetEnv(t, ClaudeRootEnv)
	withUnsetEnv(t, DroidRootEnv)
	withUnsetEnv(t, CodexBinEnv)
	withUnsetEnv(t, ClaudeBinEnv)
	withEnv(t, "XDG_CONFIG_HOME", "/xdg-config")

	roots, err := ResolveRoots()
	if err != nil {
		t.Fatalf("ResolveRoots: %v", err)
	}
	if roots.AmpRoot != filepath.Join("/xdg-config", "amp") {
		t.Fatalf("expected amp root to follow XDG_CONFIG_HOME, got %q", roots.AmpRoot)
	}
}

func TestResolveRootsRejectsSetButEmpty(t *testing.T) {
	withEnv(t, DroidRootEnv, "")
	withUnsetEnv(t, LubanRootEnv)
	withUnsetEnv(t, CodexRootEnv)
	withUnsetEnv(t, AmpRootEnv)
	withUnsetEnv(t, ClaudeRootEnv)

	if _, err := ResolveRoots(); err == nil {
		t.Fatalf("expected an error for LUBAN_DROID_ROOT set to empty")
	}
}
