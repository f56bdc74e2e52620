package kv

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/flarexio/cms/conf"
	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/translation"
)

type kvRepositoryTestSuite struct {
	suite.Suite
	db           *Database
	contents     content.Repository
	translations translation.Repository
	faq          *content.FAQ
}

func (suite *kvRepositoryTestSuite) SetupSuite() {
	cfg := conf.Persistence{
		Driver: conf.BadgerDB,
		Name:   "cms",
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

func (suite *kvRepositoryTestSuite) SetupTest() {
	// 每個測試前清空資料
	suite.db.Truncate()

	faq := &content.FAQ{
		Question: "How long does a tourist visa take?",
		Answer:   "Usually two to four weeks.",
		Category: "timing",
	}
	faq.Position = 0
	faq.Published = true
	content.Init(faq)

	suite.contents.StoreItems(faq)
	suite.faq = faq
}

func (suite *kvRepositoryTestSuite) TestSingletonDefaults() {
	hero, err := suite.contents.Hero()
	suite.NoError(err)
	suite.Equal(content.DefaultHero().Title, hero.Title)

	settings, err := suite.contents.Settings()
	suite.NoError(err)
	suite.Equal("en", settings.DefaultLocale)
}

func (suite *kvRepositoryTestSuite) TestStoreHero() {
	hero := content.DefaultHero()
	hero.Title = "Your visa, handled"

	err := suite.contents.StoreHero(hero)
	suite.NoError(err)

	found, err := suite.contents.Hero()
	suite.NoError(err)
	suite.Equal("Your visa, handled", found.Title)
}

func (suite *kvRepositoryTestSuite) TestFindItem() {
	item, err := suite.contents.FindItem(content.FAQs, suite.faq.ID)
	suite.NoError(err)

	faq, ok := item.(*content.FAQ)
	suite.True(ok)
	suite.Equal(suite.faq.Question, faq.Question)
	suite.True(faq.Published)
}

func (suite *kvRepositoryTestSuite) TestFindItemWrongKind() {
	_, err := suite.contents.FindItem(content.Steps, suite.faq.ID)
	suite.ErrorIs(err, content.ErrItemNotFound)
}

func (suite *kvRepositoryTestSuite) TestListItemsOrdered() {
	second := &content.FAQ{Question: "Second?", Answer: "Yes."}
	second.Position = 2
	content.Init(second)

	first := &content.FAQ{Question: "First?", Answer: "Yes."}
	first.Position = 1
	content.Init(first)

	err := suite.contents.StoreItems(second, first)
	suite.NoError(err)

	items, err := suite.contents.ListItems(content.FAQs)
	suite.NoError(err)
	suite.Len(items, 3)
	suite.Equal(suite.faq.ID, items[0].Header().ID)
	suite.Equal(first.ID, items[1].Header().ID)
	suite.Equal(second.ID, items[2].Header().ID)

	// 其他類別不受影響
	steps, err := suite.contents.ListItems(content.Steps)
	suite.NoError(err)
	suite.Len(steps, 0)
}

func (suite *kvRepositoryTestSuite) TestDeleteItem() {
	err := suite.contents.DeleteItem(content.FAQs, suite.faq.ID)
	suite.NoError(err)

	_, err = suite.contents.FindItem(content.FAQs, suite.faq.ID)
	suite.ErrorIs(err, content.ErrItemNotFound)

	err = suite.contents.DeleteItem(content.FAQs, suite.faq.ID)
	suite.ErrorIs(err, content.ErrItemNotFound)
}

func (suite *kvRepositoryTestSuite) TestTranslations() {
	ts := []*translation.Translation{
		translation.NewTranslation("en", "hero.title", "Welcome", translation.Synced),
		translation.NewTranslation("es", "hero.title", "Bienvenido", translation.Manual),
		translation.NewTranslation("es", "hero.subtitle", "Hola", translation.Auto),
		translation.NewTranslation("fr", "hero.title", "Bienvenue", translation.Auto),
	}

	err := suite.translations.StoreBatch(ts)
	suite.NoError(err)

	found, err := suite.translations.Find("es", "hero.title")
	suite.NoError(err)
	suite.Equal("Bienvenido", found.Value)
	suite.Equal(translation.Manual, found.Source)

	es, err := suite.translations.ListByLocale("es")
	suite.NoError(err)
	suite.Len(es, 2)

	locales, err := suite.translations.Locales()
	suite.NoError(err)
	suite.Equal([]string{"en", "es", "fr"}, locales)

	// 覆寫既有的翻譯
	err = suite.translations.Store(translation.NewTranslation("es", "hero.title", "Hola de nuevo", translation.Manual))
	suite.NoError(err)

	found, err = suite.translations.Find("es", "hero.title")
	suite.NoError(err)
	suite.Equal("Hola de nuevo", found.Value)
}

func (suite *kvRepositoryTestSuite) TestDeleteTranslations() {
	ts := []*translation.Translation{
		translation.NewTranslation("en", "faqs.a.question", "Q", translation.Synced),
		translation.NewTranslation("es", "faqs.a.question", "P", translation.Auto),
		translation.NewTranslation("es", "faqs.b.question", "P2", translation.Auto),
	}

	suite.translations.StoreBatch(ts)

	err := suite.translations.DeleteKeys([]string{"faqs.a.question"})
	suite.NoError(err)

	all, err := suite.translations.ListAll()
	suite.NoError(err)
	suite.Len(all, 1)
	suite.Equal("faqs.b.question", all[0].Key)

	err = suite.translations.Delete("es", "faqs.b.question")
	suite.NoError(err)

	err = suite.translations.Delete("es", "faqs.b.question")
	suite.ErrorIs(err, translation.ErrTranslationNotFound)
}

func (suite *kvRepositoryTestSuite) TearDownSuite() {
	suite.db.Truncate()
	suite.db.Close()
}

func TestKVRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(kvRepositoryTestSuite))
}
