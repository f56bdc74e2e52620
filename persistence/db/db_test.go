package db

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/flarexio/cms/conf"
	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/translation"
)

type dbRepositoryTestSuite struct {
	suite.Suite
	db           *Database
	contents     content.Repository
	translations translation.Repository
	offering     *content.Offering
}

func (suite *dbRepositoryTestSuite) SetupSuite() {
	cfg := conf.Persistence{
		Driver: conf.SQLite,
		Name:   "cms_test",
		InMem:  true,
	}

	db, err := NewDatabase(cfg)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.db = db
	suite.contents = db.Contents()
	suite.translations = db.Translations()
}

func (suite *dbRepositoryTestSuite) SetupTest() {
	suite.db.Truncate()

	offering := &content.Offering{
		Title:       "Work permits",
		Description: "Employer sponsored permits",
		Icon:        "briefcase",
		Features:    []string{"Eligibility check", "Document review"},
	}
	offering.Published = true
	content.Init(offering)

	suite.contents.StoreItems(offering)
	suite.offering = offering
}

func (suite *dbRepositoryTestSuite) TestSingletons() {
	settings, err := suite.contents.Settings()
	suite.NoError(err)
	suite.Equal([]string{"en"}, settings.Locales)

	settings.Locales = []string{"en", "es"}
	settings.Tagline = "Move with confidence"
	err = suite.contents.StoreSettings(settings)
	suite.NoError(err)

	// saving twice keeps a single row
	err = suite.contents.StoreSettings(settings)
	suite.NoError(err)

	found, err := suite.contents.Settings()
	suite.NoError(err)
	suite.Equal([]string{"en", "es"}, found.Locales)
	suite.Equal("Move with confidence", found.Tagline)

	contact := content.DefaultContact()
	contact.Phone = "+1 555 0100"
	suite.NoError(suite.contents.StoreContact(contact))

	c, err := suite.contents.Contact()
	suite.NoError(err)
	suite.Equal("+1 555 0100", c.Phone)
}

func (suite *dbRepositoryTestSuite) TestFindItem() {
	item, err := suite.contents.FindItem(content.Services, suite.offering.ID)
	suite.NoError(err)

	offering, ok := item.(*content.Offering)
	suite.True(ok)
	suite.Equal(suite.offering.ID, offering.ID)
	suite.Equal([]string{"Eligibility check", "Document review"}, offering.Features)
	suite.True(offering.Published)

	_, err = suite.contents.FindItem(content.FAQs, suite.offering.ID)
	suite.ErrorIs(err, content.ErrItemNotFound)
}

func (suite *dbRepositoryTestSuite) TestStoreItemsUpdates() {
	suite.offering.Title = "Work and study permits"
	suite.offering.Position = 4

	err := suite.contents.StoreItems(suite.offering)
	suite.NoError(err)

	items, err := suite.contents.ListItems(content.Services)
	suite.NoError(err)
	suite.Require().Len(items, 1)
	suite.Equal("Work and study permits", items[0].(*content.Offering).Title)
	suite.Equal(4, items[0].Header().Position)
}

func (suite *dbRepositoryTestSuite) TestListItemsOrdered() {
	first := &content.Step{Title: "Consult", Description: "Free call"}
	first.Position = 0
	content.Init(first)

	second := &content.Step{Title: "File", Description: "We submit"}
	second.Position = 1
	content.Init(second)

	err := suite.contents.StoreItems(second, first)
	suite.NoError(err)

	steps, err := suite.contents.ListItems(content.Steps)
	suite.NoError(err)
	suite.Require().Len(steps, 2)
	suite.Equal(first.ID, steps[0].Header().ID)
	suite.Equal(second.ID, steps[1].Header().ID)
}

func (suite *dbRepositoryTestSuite) TestDeleteItem() {
	err := suite.contents.DeleteItem(content.Services, suite.offering.ID)
	suite.NoError(err)

	items, err := suite.contents.ListItems(content.Services)
	suite.NoError(err)
	suite.Len(items, 0)

	err = suite.contents.DeleteItem(content.Services, suite.offering.ID)
	suite.ErrorIs(err, content.ErrItemNotFound)
}

func (suite *dbRepositoryTestSuite) TestTranslations() {
	ts := []*translation.Translation{
		translation.NewTranslation("en", "hero.title", "Welcome", translation.Synced),
		translation.NewTranslation("es", "hero.title", "Bienvenido", translation.Auto),
		translation.NewTranslation("pt", "hero.title", "Bem-vindo", translation.Auto),
	}
	ts[1].Checksum = translation.Checksum("Welcome")

	err := suite.translations.StoreBatch(ts)
	suite.NoError(err)

	found, err := suite.translations.Find("es", "hero.title")
	suite.NoError(err)
	suite.Equal(translation.Auto, found.Source)
	suite.Equal(translation.Checksum("Welcome"), found.Checksum)

	// upsert on locale and key
	err = suite.translations.Store(translation.NewTranslation("es", "hero.title", "Hola", translation.Manual))
	suite.NoError(err)

	found, err = suite.translations.Find("es", "hero.title")
	suite.NoError(err)
	suite.Equal("Hola", found.Value)
	suite.Equal(translation.Manual, found.Source)

	locales, err := suite.translations.Locales()
	suite.NoError(err)
	suite.Equal([]string{"en", "es", "pt"}, locales)

	err = suite.translations.DeleteKeys([]string{"hero.title"})
	suite.NoError(err)

	all, err := suite.translations.ListAll()
	suite.NoError(err)
	suite.Len(all, 0)

	_, err = suite.translations.Find("en", "hero.title")
	suite.ErrorIs(err, translation.ErrTranslationNotFound)

	err = suite.translations.Delete("en", "hero.title")
	suite.ErrorIs(err, translation.ErrTranslationNotFound)
}

func (suite *dbRepositoryTestSuite) TearDownSuite() {
	suite.db.Truncate()
	suite.db.Close()
}

func TestDBRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(dbRepositoryTestSuite))
}
