package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/flarexio/cms"
	"github.com/flarexio/cms/conf"
	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/events"
	"github.com/flarexio/cms/persistence"

	transPubSub "github.com/flarexio/cms/transport/pubsub"
)

type cmsTestSuite struct {
	suite.Suite
	cfg *conf.Config
	bus events.Bus
	db  persistence.Database
	svc cms.Service
}

func (suite *cmsTestSuite) SetupTest() {
	conf.Path = "../.."
	conf.Port = 8080

	cfg, err := conf.LoadConfig()
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	cfg.Persistence.Driver = conf.InMem
	cfg.Translator.Provider = conf.NoTranslator
	cfg.Site.AutoSyncDelay = 50 * time.Millisecond

	db, err := persistence.NewDatabase(cfg.Persistence)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	bus := events.NewSimpleBus()

	svc, err := newService(context.Background(), cfg, db, bus, zap.NewNop())
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.cfg = cfg
	suite.bus = bus
	suite.db = db
	suite.svc = svc
}

func (suite *cmsTestSuite) TestConfig() {
	suite.Equal("cms", suite.cfg.Name)
	suite.Equal("en", suite.cfg.Site.BaseLocale)
	suite.Contains(suite.cfg.Site.Locales, "es")
	suite.Equal("cms", suite.cfg.JWT.Audiences[0])
}

func (suite *cmsTestSuite) TestSeed() {
	f, err := os.Open("../../seed.example.yaml")
	if err != nil {
		suite.Fail(err.Error())
		return
	}
	defer f.Close()

	seed, err := cms.LoadSeed(f)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	n, err := seed.Apply(suite.svc)
	suite.NoError(err)
	suite.Equal(9, n)

	page, err := suite.svc.Page("es")
	suite.NoError(err)
	suite.Len(page.Services, 2)
	suite.Len(page.Steps, 2)
	suite.Equal("Visa Services", page.Settings.SiteName)
	suite.Equal("es", page.Meta.ResolvedLocale)
}

func (suite *cmsTestSuite) TestAutoSync() {
	handler := transPubSub.EventHandler(cms.EventEndpoint(suite.svc))
	debounced, debouncer := events.Debounce(suite.cfg.Site.AutoSyncDelay, handler)
	defer debouncer.Stop()

	suite.bus.QueueSubscribe("cms-sync", func(ctx context.Context, e *events.ContentChanged) error {
		if e.TranslationsOnly() {
			return nil
		}

		return debounced(ctx, e)
	})

	faq := &content.FAQ{
		Question: "Do you handle renewals?",
		Answer:   "Yes, for every visa we file.",
	}

	created, err := suite.svc.CreateItem(faq)
	suite.Require().NoError(err)

	key := content.Key(created) + ".question"

	suite.Eventually(func() bool {
		t, err := suite.db.Translations().Find("en", key)
		return err == nil && t.Value == faq.Question
	}, 2*time.Second, 20*time.Millisecond)
}

func (suite *cmsTestSuite) TearDownTest() {
	suite.bus.Close()
	suite.db.Close()
}

func TestCMSTestSuite(t *testing.T) {
	suite.Run(t, new(cmsTestSuite))
}
