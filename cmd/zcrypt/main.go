// zcrypt compresses and encrypts a stream into a password-protected
// container, or reverses the process with -d.
//
//	zcrypt -i notes.txt -o notes.zc
//	zcrypt -d < notes.zc > notes.txt
//
// The password is read from --password-file, the ZCRYPT_PASSWORD
// environment variable, or the controlling terminal, in that order.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/absfs/absfs"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/absfs/zcrypt"
	"github.com/absfs/zcrypt/internal/config"
	"github.com/absfs/zcrypt/internal/iobuf"
	"github.com/absfs/zcrypt/internal/passphrase"
)

var (
	version = "dev"
	commit  = "unknown"
)

// environment is the process surface the command runs against
type environment struct {
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	FS         absfs.FileSystem
	Terminal   passphrase.Terminal
	IsTerminal func(stream any) bool
	Getenv     func(string) string
}

func osEnvironment() environment {
	return environment{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		FS:         iobuf.NewOSFS(),
		Terminal:   passphrase.NewTTY(),
		IsTerminal: iobuf.IsTerminal,
		Getenv:     os.Getenv,
	}
}

func main() {
	os.Exit(run(os.Args[1:], osEnvironment()))
}

type flags struct {
	decompress   bool
	input        string
	output       string
	level        int
	threads      int
	configPath   string
	passwordFile string
	confirm      bool
	logLevel     string
	version      bool
}

// run executes one invocation and returns the process exit code
func run(args []string, env environment) int {
	logger := logrus.New()
	logger.SetOutput(env.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	var f flags
	flagSet := pflag.NewFlagSet("zcrypt", pflag.ContinueOnError)
	flagSet.SetOutput(env.Stderr)
	flagSet.BoolVarP(&f.decompress, "decompress", "d", false, "decrypt and decompress instead of compress and encrypt")
	flagSet.StringVarP(&f.input, "input", "i", "", "input file (default: stdin)")
	flagSet.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	flagSet.IntVarP(&f.level, "level", "l", zcrypt.DefaultLevel, "compression level 0-9; higher values are clamped to 9")
	flagSet.IntVarP(&f.threads, "threads", "t", 0, "compression threads (default: 1.5x physical cores)")
	flagSet.StringVarP(&f.configPath, "config", "c", env.Getenv("ZCRYPT_CONFIG"), "YAML configuration file")
	flagSet.StringVar(&f.passwordFile, "password-file", "", "read the password from this file")
	flagSet.BoolVar(&f.confirm, "confirm", false, "ask for the password twice when encrypting")
	flagSet.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flagSet.BoolVarP(&f.version, "version", "V", false, "print version and exit")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}
	if f.version {
		fmt.Fprintf(env.Stdout, "zcrypt %s (%s)\n", version, commit)
		return 0
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		logger.Errorf("unexpected argument: %s", rest[0])
		return 1
	}

	cfg, err := config.LoadConfig(f.configPath, env.Getenv)
	if err != nil {
		logger.WithError(err).Error("Failed to load configuration")
		return 1
	}
	applyFlags(cfg, flagSet, &f)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Error("Invalid configuration")
		return 1
	}

	if err := configureLogger(logger, cfg, env); err != nil {
		logger.WithError(err).Error("Invalid logging configuration")
		return 1
	}

	log := logger.WithField("op_id", uuid.NewString())
	if err := execute(log, cfg, &f, env); err != nil {
		log.WithError(err).Error(failureMessage(f.decompress))
		return 1
	}
	return 0
}

// applyFlags overrides configuration with flags set on the command line
func applyFlags(cfg *config.Config, flagSet *pflag.FlagSet, f *flags) {
	if flagSet.Changed("level") {
		cfg.Level = f.level
	}
	if flagSet.Changed("threads") {
		cfg.Threads = f.threads
	}
	if flagSet.Changed("password-file") {
		cfg.Password.File = f.passwordFile
	}
	if flagSet.Changed("confirm") {
		cfg.Password.Confirm = f.confirm
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
}

func configureLogger(logger *logrus.Logger, cfg *config.Config, env environment) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	format := strings.ToLower(cfg.LogFormat)
	if format == "" || format == "auto" {
		format = "text"
		if !env.IsTerminal(env.Stderr) {
			format = "json"
		}
	}
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}
	return nil
}

func execute(log *logrus.Entry, cfg *config.Config, f *flags, env environment) error {
	bufs, err := iobuf.Open(iobuf.Options{
		FS:         env.FS,
		Input:      f.input,
		Output:     f.output,
		Stdin:      env.Stdin,
		Stdout:     env.Stdout,
		IsTerminal: env.IsTerminal,
	})
	if err != nil {
		return err
	}

	source := &passphrase.Source{
		File:     cfg.Password.File,
		Env:      cfg.Password.Env,
		Terminal: env.Terminal,
		Getenv:   env.Getenv,
	}
	password, err := source.Read(cfg.Password.Confirm && !f.decompress)
	if err != nil {
		bufs.Close()
		return err
	}

	var stats *zcrypt.Stats
	if f.decompress {
		log.Debug("Decoding")
		stats, err = zcrypt.Decode(bufs.Input, bufs.Output, password)
	} else {
		threads := cfg.Threads
		if threads == 0 {
			threads = zcrypt.DefaultThreads()
		}
		log.WithFields(logrus.Fields{
			"level":   zcrypt.ClampLevel(cfg.Level),
			"threads": threads,
		}).Debug("Encoding")
		stats, err = zcrypt.Encode(bufs.Input, bufs.Output, password, zcrypt.Options{
			Level:   cfg.Level,
			Threads: threads,
		})
	}
	if err != nil {
		bufs.Close()
		return err
	}
	if err := bufs.Close(); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"bytes_in":      stats.BytesIn,
		"bytes_out":     stats.BytesOut,
		"payload_bytes": stats.PayloadBytes,
	}).Info(successMessage(f.decompress))
	return nil
}

func successMessage(decompress bool) string {
	if decompress {
		return "Decoded container"
	}
	return "Encoded container"
}

func failureMessage(decompress bool) string {
	if decompress {
		return "Failed to decode container"
	}
	return "Failed to encode container"
}
