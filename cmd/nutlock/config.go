package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nutlock/nutlock/identity"
	"github.com/nutlock/nutlock/relock"
)

type LogLevel int

const (
	Info LogLevel = iota
	Debug
	Disable
)

type Config struct {
	Path           string
	LogLevel       LogLevel
	MintTimeout    time.Duration
	NostrSecretKey string
	NostrPubkey    string
	Mnemonic       string
}

// loadConfig reads the .env in the nutlock path (or the working directory
// if there is none there) and then the environment.
func loadConfig() (Config, error) {
	path := os.Getenv("NUTLOCK_PATH")
	if len(path) == 0 {
		homedir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, err
		}
		path = filepath.Join(homedir, ".nutlock")
	}

	envPath := filepath.Join(path, ".env")
	if _, err := os.Stat(envPath); err != nil {
		wd, err := os.Getwd()
		if err != nil {
			envPath = ""
		} else {
			envPath = filepath.Join(wd, ".env")
		}
	}
	if len(envPath) > 0 {
		// variables already set in the environment take precedence
		godotenv.Load(envPath)
	}

	return configFromEnv(path)
}

func configFromEnv(path string) (Config, error) {
	config := Config{
		Path:           path,
		LogLevel:       Info,
		NostrSecretKey: os.Getenv("NOSTR_SECRET_KEY"),
		NostrPubkey:    os.Getenv("NOSTR_PUBKEY"),
		Mnemonic:       os.Getenv("WALLET_MNEMONIC"),
	}

	switch strings.ToLower(os.Getenv("NUTLOCK_LOG_LEVEL")) {
	case "", "info":
	case "debug":
		config.LogLevel = Debug
	case "disable":
		config.LogLevel = Disable
	default:
		return Config{}, fmt.Errorf("invalid NUTLOCK_LOG_LEVEL '%v'", os.Getenv("NUTLOCK_LOG_LEVEL"))
	}

	if timeout := os.Getenv("MINT_TIMEOUT"); len(timeout) > 0 {
		seconds, err := strconv.ParseUint(timeout, 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MINT_TIMEOUT: %v", err)
		}
		config.MintTimeout = time.Duration(seconds) * time.Second
	}

	return config, nil
}

func (c Config) logger() *slog.Logger {
	switch c.LogLevel {
	case Debug:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case Disable:
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	default:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// identity picks the nostr secret key, then the mnemonic, then the
// nostr pubkey. With none of them set there is no active identity.
func (c Config) identity() (relock.IdentityProvider, error) {
	switch {
	case len(c.NostrSecretKey) > 0:
		return identity.NewNostrIdentity(c.NostrSecretKey)
	case len(c.Mnemonic) > 0:
		return identity.NewSeedIdentity(c.Mnemonic)
	case len(c.NostrPubkey) > 0:
		return identity.NewNostrPubkey(c.NostrPubkey)
	}
	return identity.None{}, nil
}
