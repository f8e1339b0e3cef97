package main

import (
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jask/safeflow/internal/assistant"
	"github.com/jask/safeflow/internal/config"
	"github.com/jask/safeflow/internal/database"
	"github.com/jask/safeflow/internal/database/repository"
	"github.com/jask/safeflow/internal/llm"
	"github.com/jask/safeflow/internal/logger"
	"github.com/jask/safeflow/internal/metrics"
	"github.com/jask/safeflow/internal/secrets"
	"github.com/jask/safeflow/internal/service"
	"github.com/jask/safeflow/internal/voice"
)

const keyProvider = "gemini"

// env is everything a subcommand needs, built once from config.
type env struct {
	cfg     config.Config
	log     zerolog.Logger
	secrets *secrets.Store
	db      *sql.DB
	usage   *service.UsageService
	closers []io.Closer
}

// loadEnv reads .env, config and sets up logging. logOut receives log lines.
func loadEnv(logOut io.Writer) (*env, error) {
	if err := godotenv.Load(flagEnvFile); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrapf(err, "load %s", flagEnvFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagProfile != "" {
		cfg.Assistant.Profile = flagProfile
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	store, err := secrets.NewStore("")
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:     cfg,
		log:     logger.New(cfg.Log.Level, logOut),
		secrets: store,
	}, nil
}

// loadFileLogging is loadEnv for interactive commands, logging to log.file.
func loadFileLogging() (*env, error) {
	e, err := loadEnv(io.Discard)
	if err != nil {
		return nil, err
	}
	if e.cfg.Log.File == "" {
		return e, nil
	}
	f, err := logger.OpenFile(e.cfg.Log.File)
	if err != nil {
		return nil, err
	}
	e.log = logger.New(e.cfg.Log.Level, f)
	e.closers = append(e.closers, f)
	return e, nil
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}

// openUsage opens the usage ledger. It is a no-op when usage.db_path is empty.
func (e *env) openUsage() error {
	path := strings.TrimSpace(e.cfg.Usage.DBPath)
	if path == "" || e.db != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "mkdir usage dir")
	}
	db, err := database.OpenMigrated(path)
	if err != nil {
		return err
	}
	e.db = db
	e.closers = append(e.closers, db)
	e.usage = &service.UsageService{Usage: repository.NewUsageRepo(db), Log: e.log}
	return nil
}

// catalog is the built-in profiles plus assistant.profiles_file.
func (e *env) catalog() (*assistant.Catalog, error) {
	cat := assistant.NewCatalog()
	if path := strings.TrimSpace(e.cfg.Assistant.ProfilesFile); path != "" {
		if err := cat.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func (e *env) profile() (assistant.Profile, error) {
	cat, err := e.catalog()
	if err != nil {
		return assistant.Profile{}, err
	}
	return cat.Get(e.cfg.Assistant.Profile)
}

// resolveAPIKey checks the env var named by llm.api_key_env, then the
// secrets store, then llm.api_key.
func resolveAPIKey(cfg config.Config, store *secrets.Store, getenv func(string) string) string {
	name := strings.TrimSpace(cfg.LLM.APIKeyEnv)
	if name == "" {
		name = "GEMINI_API_KEY"
	}
	if v := strings.TrimSpace(getenv(name)); v != "" {
		return v
	}
	if store != nil {
		if k, err := store.Get(keyProvider); err == nil {
			return k
		}
	}
	return strings.TrimSpace(cfg.LLM.APIKey)
}

func (e *env) completer(p assistant.Profile) (*llm.GeminiClient, error) {
	return llm.NewGeminiClient(llm.GeminiOptions{
		Endpoint:    e.cfg.LLM.Endpoint,
		APIKey:      resolveAPIKey(e.cfg, e.secrets, os.Getenv),
		Preamble:    p.Preamble,
		DefaultText: p.DefaultReply,
		Timeout:     e.cfg.LLM.Timeout,
		Logger:      e.log,
	})
}

// voiceAdapters builds the configured speech commands. Either may be nil.
func voiceAdapters(cfg config.VoiceConfig) (voice.Recognizer, voice.Synthesizer) {
	var rec voice.Recognizer
	var synth voice.Synthesizer
	if cmd := strings.TrimSpace(cfg.RecognizerCommand); cmd != "" {
		rec = voice.CommandRecognizer{Command: cmd, Args: cfg.RecognizerArgs}
	}
	if cmd := strings.TrimSpace(cfg.SpeakerCommand); cmd != "" {
		if len(cfg.SpeakerArgs) == 0 && cmd == voice.DefaultSpeaker().Command {
			synth = voice.DefaultSpeaker()
		} else {
			synth = voice.CommandSynthesizer{Command: cmd, Args: cfg.SpeakerArgs}
		}
	}
	return rec, synth
}

// conversation wires one conversation with metrics and, when open, the
// usage ledger as observers.
func (e *env) conversation(extra ...assistant.Observer) (*assistant.Conversation, error) {
	p, err := e.profile()
	if err != nil {
		return nil, err
	}
	client, err := e.completer(p)
	if err != nil {
		return nil, err
	}
	observers := []assistant.Observer{metrics.Observer{}}
	if e.usage != nil {
		observers = append(observers, e.usage)
	}
	observers = append(observers, extra...)
	rec, synth := voiceAdapters(e.cfg.Voice)
	return assistant.NewConversation(assistant.Options{
		Profile:     p,
		Completer:   client,
		Recognizer:  rec,
		Synthesizer: synth,
		Voice:       voice.Settings{Locale: e.cfg.Voice.Locale, Rate: e.cfg.Voice.Rate},
		Observers:   observers,
		Logger:      e.log,
	})
}
