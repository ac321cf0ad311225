package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Env var names for the roots contract. A set-but-empty variable is an
// error rather than silently falling back to the default: an operator who
// exported LUBAN_CODEX_ROOT="" almost certainly meant to unset it and
// forgot, and silently ignoring that hides the mistake.
const (
	LubanRootEnv     = "LUBAN_ROOT"
	CodexBinEnv      = "LUBAN_CODEX_BIN"
	CodexRootEnv     = "LUBAN_CODEX_ROOT"
	AmpRootEnv       = "LUBAN_AMP_ROOT"
	ClaudeBinEnv     = "LUBAN_CLAUDE_BIN"
	ClaudeRootEnv    = "LUBAN_CLAUDE_ROOT"
	DroidRootEnv     = "LUBAN_DROID_ROOT"
	ServerAddrEnv    = "LUBAN_SERVER_ADDR"
	DefaultServerAddr = "127.0.0.1:8421"
)

// RootsConfig locates the on-disk state and binaries for each supported
// agent runner, plus Luban's own data directory.
type RootsConfig struct {
	LubanRoot  string
	CodexBin   string
	CodexRoot  string
	AmpRoot    string
	ClaudeBin  string
	ClaudeRoot string
	DroidRoot  string
}

// optionalTrimmedPathFromEnv reads name, trims it, and errors if it was set
// to a value that trims to empty. Returns ("", false, nil) when unset.
func optionalTrimmedPathFromEnv(name string) (string, bool, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", false, nil
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false, fmt.Errorf("%s is set but empty", name)
	}
	return trimmed, true, nil
}

func resolveRootFromEnvOrDefault(envName string, fallback func() (string, error)) (string, error) {
	if value, ok, err := optionalTrimmedPathFromEnv(envName); err != nil {
		return "", err
	} else if ok {
		return value, nil
	}
	return fallback()
}

func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return home, nil
}

// ResolveRoots reads the LUBAN_ROOT/LUBAN_CODEX_ROOT/... family of
// environment variables, applying each runner's documented default when
// the variable is unset.
func ResolveRoots() (RootsConfig, error) {
	lubanRoot, err := resolveRootFromEnvOrDefault(LubanRootEnv, func() (string, error) {
		home, err := homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "luban"), nil
	})
	if err != nil {
		return RootsConfig{}, err
	}

	codexRoot, err := resolveRootFromEnvOrDefault(CodexRootEnv, func() (string, error) {
		home, err := homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".codex"), nil
	})
	if err != nil {
		return RootsConfig{}, err
	}

	ampRoot, err := resolveRootFromEnvOrDefault(AmpRootEnv, func() (string, error) {
		if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
			return filepath.Join(xdg, "amp"), nil
		}
		home, err := homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "amp"), nil
	})
	if err != nil {
		return RootsConfig{}, err
	}

	claudeRoot, err := resolveRootFromEnvOrDefault(ClaudeRootEnv, func() (string, error) {
		home, err := homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".claude"), nil
	})
	if err != nil {
		return RootsConfig{}, err
	}

	droidRoot, err := resolveRootFromEnvOrDefault(DroidRootEnv, func() (string, error) {
		home, err := homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".factory"), nil
	})
	if err != nil {
		return RootsConfig{}, err
	}

	codexBin, _, err := optionalTrimmedPathFromEnv(CodexBinEnv)
	if err != nil {
		return RootsConfig{}, err
	}
	if codexBin == "" {
		codexBin = "codex"
	}

	claudeBin, _, err := optionalTrimmedPathFromEnv(ClaudeBinEnv)
	if err != nil {
		return RootsConfig{}, err
	}
	if claudeBin == "" {
		claudeBin = "claude"
	}

	return RootsConfig{
		LubanRoot:  lubanRoot,
		CodexBin:   codexBin,
		CodexRoot:  codexRoot,
		AmpRoot:    ampRoot,
		ClaudeBin:  claudeBin,
		ClaudeRoot: claudeRoot,
		DroidRoot:  droidRoot,
	}, nil
}
