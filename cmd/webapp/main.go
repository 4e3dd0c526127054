package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mkrupp/skillsphere/internal/apiclient"
	"github.com/mkrupp/skillsphere/internal/infra/config"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
	"github.com/mkrupp/skillsphere/internal/infra/transport/http"
	"github.com/mkrupp/skillsphere/internal/repo/blob"
	"github.com/mkrupp/skillsphere/internal/repo/session"
	"github.com/mkrupp/skillsphere/internal/svc/applicationsvc"
	"github.com/mkrupp/skillsphere/internal/svc/authsvc"
	"github.com/mkrupp/skillsphere/internal/svc/draftsvc"
	"github.com/mkrupp/skillsphere/internal/svc/jobsvc"
	"github.com/mkrupp/skillsphere/internal/svc/messagesvc"
	"github.com/mkrupp/skillsphere/internal/svc/profilesvc"
	"github.com/mkrupp/skillsphere/internal/svc/sessionsvc"
	"github.com/mkrupp/skillsphere/internal/web"
)

const (
	appName = "skillsphere"
	svcName = "webapp"
)

type Config struct {
	config.EnvConfig

	Log         logging.LoggerConfig                  `envPrefix:"LOG_"`
	API         apiclient.HTTPClientConfig            `envPrefix:"API_"`
	HTTP        http.HTTPTransportConfig              `envPrefix:"HTTP_"`
	Web         web.WebConfig                         `envPrefix:"HTTP_"`
	SessionRepo session.SQLiteSessionRepositoryConfig `envPrefix:"SESSION_"`
	Session     sessionsvc.SessionConfig              `envPrefix:"SESSION_"`
	Blob        blob.FileSystemBlobRepositoryConfig   `envPrefix:"BLOB_"`
	Draft       draftsvc.DraftConfig                  `envPrefix:"DRAFT_"`
	Profile     profilesvc.ProfileConfig              `envPrefix:"PROFILE_"`
	Application applicationsvc.ApplicationConfig      `envPrefix:"APPLICATION_"`
	Message     messagesvc.MessageConfig              `envPrefix:"MESSAGE_"`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	if _, err := config.LoadDotEnv(); err != nil {
		panic(err)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	if err := logging.Configure(ctx, cfg.Log, loggerName); err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.webapp")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)

			return
		}

		log.InfoContext(ctx, "shutdown")
	}()

	sessionRepo, err := session.NewSQLiteSessionRepository(cfg.SessionRepo)
	if err != nil {
		return fmt.Errorf("new session repository: %w", err)
	}

	defer func() {
		if err := sessionRepo.Close(); err != nil {
			log.WarnContext(ctx, "close session repository failed", "error", err)
		}
	}()

	idleCutoff := time.Now().Add(-cfg.Session.IdleTimeout)

	if purged, err := sessionRepo.PurgeIdle(ctx, idleCutoff); err != nil {
		log.WarnContext(ctx, "purge idle sessions failed", "error", err)
	} else if purged > 0 {
		log.InfoContext(ctx, "purged idle sessions", "count", purged)
	}

	api, err := apiclient.NewHTTPClient(cfg.API, nil)
	if err != nil {
		return fmt.Errorf("new api client: %w", err)
	}

	sessions := sessionsvc.NewStoreSessionService(sessionRepo, api, cfg.Session)

	drafts, err := draftsvc.NewBlobDraftService(ctx, blob.FileSystemBlobRepositoryFactory(cfg.Blob), cfg.Draft)
	if err != nil {
		return fmt.Errorf("new draft service: %w", err)
	}

	sessions.Subscribe(drafts.HandleSessionEvent)

	if purged, err := drafts.PurgeStale(ctx, idleCutoff); err != nil {
		log.WarnContext(ctx, "purge stale drafts failed", "error", err)
	} else if purged > 0 {
		log.InfoContext(ctx, "purged stale drafts", "count", purged)
	}

	profiles, err := profilesvc.NewAPIProfileService(api, sessions, drafts, cfg.Profile)
	if err != nil {
		return fmt.Errorf("new profile service: %w", err)
	}

	handler, err := web.NewHandler(web.Services{
		Sessions:     sessions,
		Auth:         authsvc.NewAPIAuthService(api, sessions),
		Jobs:         jobsvc.NewAPIJobService(api, sessions),
		Applications: applicationsvc.NewAPIApplicationService(api, sessions, cfg.Application),
		Messages:     messagesvc.NewAPIMessageService(api, sessions, cfg.Message),
		Profiles:     profiles,
		Drafts:       drafts,
		Flashes:      sessionRepo,
	}, cfg.Web)
	if err != nil {
		return fmt.Errorf("new web handler: %w", err)
	}

	if err := http.ListenAndServe(ctx, handler, cfg.HTTP); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
