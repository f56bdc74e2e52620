package main

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go/micro"
	"github.com/patrickmn/go-cache"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	ginzap "github.com/gin-contrib/zap"

	"github.com/flarexio/cms"
	"github.com/flarexio/cms/conf"
	"github.com/flarexio/cms/events"
	"github.com/flarexio/cms/locale"
	"github.com/flarexio/cms/persistence"
	"github.com/flarexio/cms/translation"
	"github.com/flarexio/cms/translation/gemini"
	"github.com/flarexio/cms/transport/oauth"

	transHTTP "github.com/flarexio/cms/transport/http"
	transPubSub "github.com/flarexio/cms/transport/pubsub"
)

var (
	Version   string = "0.0.0"
	BuildTime string
	GitCommit string
)

var versionCmd = &cli.Command{
	Name:    "version",
	Aliases: []string{"ver", "v"},
	Usage:   "Show version",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "all",
			Aliases: []string{"a"},
			Usage:   "Show all infomation (include: Version, BuildTime, GitCommit)",
			Value:   false,
		},
	},
	Action: func(ctx *cli.Context) error {
		if !ctx.Bool("all") {
			fmt.Println(ctx.App.Version)
		} else {
			cli.ShowVersion(ctx)
		}
		return nil
	},
}

var genkeyCmd = &cli.Command{
	Name:  "genkey",
	Usage: "Generate a new ed25519 key pair",
	Action: func(ctx *cli.Context) error {
		pub, priv, err := ed25519.GenerateKey(nil)
		if err != nil {
			return fmt.Errorf("failed to generate key pair: %w", err)
		}

		basedPriv := base64.StdEncoding.EncodeToString(priv)
		basedPub := base64.StdEncoding.EncodeToString(pub)

		fmt.Printf("Public Key: %s\n", basedPub)
		fmt.Printf("Private Key: %s\n", basedPriv)

		return nil
	},
}

var syncCmd = &cli.Command{
	Name:  "sync",
	Usage: "Synchronize translations with the current content",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "locale",
			Usage: "Limit the sync to these locales",
		},
		&cli.BoolFlag{
			Name:  "no-translate",
			Usage: "Only report missing translations",
		},
	},
	Action: func(cli *cli.Context) error {
		env, err := setup(cli)
		if err != nil {
			return err
		}
		defer env.Close()

		req := cms.SyncRequest{
			Locales: cli.StringSlice("locale"),
		}

		if cli.Bool("no-translate") {
			translate := false
			req.AutoTranslate = &translate
		}

		report, err := env.svc.SyncTranslations(cli.Context, req)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

var seedCmd = &cli.Command{
	Name:      "seed",
	Usage:     "Load site content from a YAML file",
	ArgsUsage: "<file>",
	Action: func(cli *cli.Context) error {
		filename := cli.Args().First()
		if filename == "" {
			return fmt.Errorf("seed file is required")
		}

		f, err := os.Open(filename)
		if err != nil {
			return err
		}
		defer f.Close()

		seed, err := cms.LoadSeed(f)
		if err != nil {
			return fmt.Errorf("failed to parse seed: %w", err)
		}

		env, err := setup(cli)
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := seed.Apply(env.svc)
		if err != nil {
			return err
		}

		fmt.Printf("Seeded %d entries\n", n)
		return nil
	},
}

func main() {
	cli.VersionPrinter = func(cli *cli.Context) {
		fmt.Println("Version: " + cli.App.Version)
		fmt.Println("BuildTime: " + BuildTime)
		fmt.Println("GitCommit: " + GitCommit)
	}

	app := &cli.App{
		Name:     "cms",
		Usage:    "Multilingual content management for a services landing page",
		Version:  Version,
		Commands: []*cli.Command{versionCmd, genkeyCmd, syncCmd, seedCmd},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Usage:   "Specifies the working directory",
				EnvVars: []string{"CMS_PATH"},
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Specifies the HTTP service port",
				Value:   8080,
				EnvVars: []string{"CMS_HTTP_PORT"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// environment holds what every command needs.
type environment struct {
	cfg *conf.Config
	log *zap.Logger
	db  persistence.Database
	svc cms.Service
}

func (env *environment) Close() {
	env.db.Close()
	env.log.Sync()
}

func setup(cli *cli.Context) (*environment, error) {
	if err := conf.LoadEnv(cli); err != nil {
		return nil, err
	}

	cfg, err := conf.LoadConfig()
	if err != nil {
		return nil, err
	}
	conf.ReplaceGlobals(cfg)

	log, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(log)

	// Add Persistence
	db, err := persistence.NewDatabase(cfg.Persistence)
	if err != nil {
		log.Error(err.Error(),
			zap.String("infra", "persistence"),
			zap.String("driver", cfg.Persistence.Driver.String()),
		)
		return nil, err
	}

	svc, err := newService(cli.Context, cfg, db, nil, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &environment{cfg, log, db, svc}, nil
}

func newTranslator(ctx context.Context, cfg conf.Translator) (translation.Translator, error) {
	switch cfg.Provider {
	case conf.Gemini:
		return gemini.NewTranslator(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, nil
	}
}

func newService(ctx context.Context, cfg *conf.Config, db persistence.Database, publisher events.Publisher, log *zap.Logger) (cms.Service, error) {
	translator, err := newTranslator(ctx, cfg.Translator)
	if err != nil {
		log.Error(err.Error(),
			zap.String("infra", "translator"),
			zap.String("provider", cfg.Translator.Provider.String()),
		)
		return nil, err
	}

	opts := cms.Options{
		Site:      cfg.Site,
		Admins:    cfg.Admins,
		ClientID:  cfg.Providers.Google.Client.ID,
		BatchSize: cfg.Translator.BatchSize,
		Publisher: publisher,
	}

	if translator != nil {
		opts.Translator = translator
	}

	svc := cms.NewService(db.Contents(), db.Translations(), opts)
	svc = cms.LoggingMiddleware(log)(svc)
	return svc, nil
}

func newBus(cfg *conf.Config, log *zap.Logger) (events.Bus, error) {
	switch cfg.EventBus.Provider {
	case conf.NATS:
		creds := cfg.EventBus.Creds
		if creds == "" {
			if _, err := os.Stat(conf.Path + "/user.creds"); err == nil {
				creds = conf.Path + "/user.creds"
			}
		}

		bus, err := transPubSub.NewNATSBus(cfg.EventBus.URL, cfg.Name, creds)
		if err != nil {
			return nil, err
		}

		log.Info("connected")
		return bus, nil

	default:
		return events.NewSimpleBus(), nil
	}
}

func run(cli *cli.Context) error {
	err := conf.LoadEnv(cli)
	if err != nil {
		return err
	}

	cfg, err := conf.LoadConfig()
	if err != nil {
		return err
	}
	conf.ReplaceGlobals(cfg)

	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Add Persistence
	db, err := persistence.NewDatabase(cfg.Persistence)
	if err != nil {
		log.Error(err.Error(),
			zap.String("infra", "persistence"),
			zap.String("driver", cfg.Persistence.Driver.String()),
		)
		return err
	}
	defer db.Close()

	// Add Event Bus
	var bus events.Bus
	{
		log := log.With(
			zap.String("infra", "eventbus"),
			zap.String("provider", cfg.EventBus.Provider.String()),
		)

		bus, err = newBus(cfg, log)
		if err != nil {
			log.Error(err.Error())
			return err
		}
		defer bus.Close()
	}

	// Add Service and Middlewares
	svc, err := newService(ctx, cfg, db, bus, log)
	if err != nil {
		return err
	}

	pages := cache.New(cfg.Site.CacheTTL, 2*cfg.Site.CacheTTL)
	svc = cms.CachingMiddleware(pages)(svc)

	// Add Endpoints
	endpoints := cms.NewEndpointSet(svc)

	// Add Event Subscribers

	// SUB content.> (every node)
	bus.Subscribe(func(ctx context.Context, e *events.ContentChanged) error {
		pages.Flush()
		return nil
	})

	if cfg.Site.AutoSync {
		handler := transPubSub.EventHandler(cms.EventEndpoint(svc))
		debounced, debouncer := events.Debounce(cfg.Site.AutoSyncDelay, handler)
		defer debouncer.Stop()

		// SUB content.> (queue cms-sync, one node per change)
		bus.QueueSubscribe("cms-sync", func(ctx context.Context, e *events.ContentChanged) error {
			if e.TranslationsOnly() {
				return nil
			}

			return debounced(ctx, e)
		})
	}

	// Add PubSub Transport
	if natsBus, ok := bus.(*transPubSub.NATSBus); ok {
		srv, err := transPubSub.AddService(natsBus, micro.Config{
			Name:        "cms",
			Version:     Version,
			Description: "Multilingual content management for a services landing page",
			Metadata: map[string]string{
				"id": cfg.Name,
			},
		}, endpoints)

		if err != nil {
			return err
		}
		defer srv.Stop()
	}

	// Add HTTP Transport
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(ginzap.Ginzap(log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(log, true))
	r.Use(transHTTP.RequestID())

	tmpl, err := transHTTP.LoadTemplates(cfg.Site.Templates)
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)

	transHTTP.Init(
		cfg.BaseURL,          // issuer
		cfg.JWT.Audiences[0], // audience
		cfg.JWT.Privkey,      // ed25519 private key
	)

	matcher := locale.NewMatcher(cfg.Site.Locales, cfg.Site.BaseLocale)
	transHTTP.AddPublicRoutes(r, endpoints, matcher)

	permissionsPath := filepath.Join(conf.Path, "permissions.rego")
	policy, err := transHTTP.NewRegoPolicy(ctx, permissionsPath)
	if err != nil {
		return err
	}

	auth := transHTTP.Authorizator(policy)

	apiV1 := r.Group("/cms/v1")
	{
		if provider := cfg.Providers.Google; provider.Client.ID != "" {
			oauth.SetConfig(provider)

			// GET /auth/google
			apiV1.GET("/auth/google", oauth.LoginAuthURLHandler())

			// GET /auth/google/callback
			apiV1.GET("/auth/google/callback", oauth.AuthCallback(endpoints.SignIn))
		}

		transHTTP.AddAdminRoutes(apiV1, endpoints, auth)
	}

	go r.Run(":" + strconv.Itoa(conf.Port))

	// Add Service Discovery
	if consul := cfg.Discovery.Consul; consul.Enabled {
		deregister, err := registerConsul(cfg, conf.Port)
		if err != nil {
			log.Error(err.Error(), zap.String("infra", "consul"))
			return err
		}
		defer deregister()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sign := <-quit

	log.Info("shutdown", zap.String("singal", sign.String()))
	return nil
}
