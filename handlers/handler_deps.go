package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"uniscript/config"
	"uniscript/internal/pipeline"
	"uniscript/internal/store"
	"uniscript/internal/translate"
	"uniscript/internal/worker"
	"uniscript/models"
)

// DurationProber reports a media file's duration in seconds, or 0 when
// probing is unavailable.
type DurationProber interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// URLDownloader fetches a remote video into local storage.
type URLDownloader interface {
	Download(ctx context.Context, url string) (string, error)
}

// ScriptTranslator runs the translation stage for one script.
type ScriptTranslator interface {
	Translate(ctx context.Context, content models.ScriptContent, targetLang string) (translate.TranslatedScript, error)
}

// JobSubmitter hands a pipeline run to the background worker pool.
type JobSubmitter interface {
	Submit(job worker.Job) error
}

// ApplicationHandler holds shared dependencies for handlers. Everything is
// an interface so handler tests can run against fakes.
type ApplicationHandler struct {
	Logger       *logrus.Logger
	Config       *config.Config
	Store        store.Store
	Prober       DurationProber
	Downloader   URLDownloader
	Translator   ScriptTranslator
	Dispatcher   JobSubmitter
	Orchestrator *pipeline.Orchestrator
}

func NewApplicationHandler(
	log *logrus.Logger,
	cfg *config.Config,
	st store.Store,
	prober DurationProber,
	dl URLDownloader,
	translator ScriptTranslator,
	dispatcher JobSubmitter,
	orchestrator *pipeline.Orchestrator,
) *ApplicationHandler {
	return &ApplicationHandler{
		Logger:       log,
		Config:       cfg,
		Store:        st,
		Prober:       prober,
		Downloader:   dl,
		Translator:   translator,
		Dispatcher:   dispatcher,
		Orchestrator: orchestrator,
	}
}
