package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestParseKind(t *testing.T) {
	assert := assert.New(t)

	for _, kind := range Kinds {
		parsed, err := ParseKind(kind.String())
		assert.NoError(err)
		assert.Equal(kind, parsed)
	}

	kind, err := ParseKind("FAQs")
	assert.NoError(err)
	assert.Equal(FAQs, kind)

	_, err = ParseKind("widgets")
	assert.ErrorIs(err, ErrKindInvalid)
}

func TestItemJSON(t *testing.T) {
	assert := assert.New(t)

	step := &Step{Title: "Apply", Description: "Submit the form"}
	step.Position = 3
	Init(step)

	data, err := json.Marshal(step)
	assert.NoError(err)

	var decoded *Step
	assert.NoError(json.Unmarshal(data, &decoded))
	assert.Equal(step.ID, decoded.ID)
	assert.Equal(3, decoded.Position)
	assert.Equal("Apply", decoded.Title)
}

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	assert.Error((&Offering{Title: "Work permits"}).Validate())
	assert.NoError((&Offering{Title: "Work permits", Description: "Sponsored"}).Validate())

	testimonial := &Testimonial{Author: "Ana", Quote: "Great", Rating: 6}
	assert.Error(testimonial.Validate())

	testimonial.Rating = 5
	testimonial.AvatarURL = "not a url"
	assert.Error(testimonial.Validate())

	testimonial.AvatarURL = "https://cdn.example.com/ana.png"
	assert.NoError(testimonial.Validate())

	hero := DefaultHero()
	hero.CTAURL = "#contact"
	assert.NoError(hero.Validate())

	contact := DefaultContact()
	contact.Email = "nobody"
	assert.Error(contact.Validate())

	settings := DefaultSettings()
	settings.DefaultLocale = "de"
	assert.Error(settings.Validate())
}

func TestCopy(t *testing.T) {
	assert := assert.New(t)

	offering := &Offering{
		Title:       "Tourist visas",
		Description: "Interview preparation",
		Features:    []string{"Checklist"},
	}
	Init(offering)

	cp, err := Copy(offering)
	assert.NoError(err)

	copied := cp.(*Offering)
	copied.Features[0] = "Changed"
	assert.Equal("Checklist", offering.Features[0])
	assert.Equal(offering.ID, copied.ID)
}

type orderTestSuite struct {
	suite.Suite
	items []Item
}

func (suite *orderTestSuite) SetupTest() {
	suite.items = make([]Item, 0)
	for i, q := range []string{"a", "b", "c", "d"} {
		faq := &FAQ{Question: q, Answer: q}
		faq.Position = i
		Init(faq)
		suite.items = append(suite.items, faq)
	}
}

func questions(items []Item) []string {
	qs := make([]string, 0, len(items))
	for _, item := range items {
		qs = append(qs, item.(*FAQ).Question)
	}
	return qs
}

func (suite *orderTestSuite) TestReorderForward() {
	ordered, err := Reorder(suite.items, 0, 2)
	suite.NoError(err)
	suite.Equal([]string{"b", "c", "a", "d"}, questions(ordered))

	for i, item := range ordered {
		suite.Equal(i, item.Header().Position)
	}
}

func (suite *orderTestSuite) TestReorderBackward() {
	ordered, err := Reorder(suite.items, 3, 0)
	suite.NoError(err)
	suite.Equal([]string{"d", "a", "b", "c"}, questions(ordered))
}

func (suite *orderTestSuite) TestReorderSamePosition() {
	ordered, err := Reorder(suite.items, 1, 1)
	suite.NoError(err)
	suite.Equal([]string{"a", "b", "c", "d"}, questions(ordered))
}

func (suite *orderTestSuite) TestReorderOutOfRange() {
	_, err := Reorder(suite.items, 4, 0)
	suite.ErrorIs(err, ErrInvalidPosition)

	_, err = Reorder(suite.items, 0, -1)
	suite.ErrorIs(err, ErrInvalidPosition)
}

func (suite *orderTestSuite) TestArrange() {
	ids := []ItemID{
		suite.items[2].Header().ID,
		suite.items[0].Header().ID,
		suite.items[3].Header().ID,
		suite.items[1].Header().ID,
	}

	ordered, err := Arrange(suite.items, ids)
	suite.NoError(err)
	suite.Equal([]string{"c", "a", "d", "b"}, questions(ordered))
	suite.Equal(3, ordered[3].Header().Position)
}

func (suite *orderTestSuite) TestArrangeInvalid() {
	ids := []ItemID{
		suite.items[0].Header().ID,
		suite.items[0].Header().ID,
		suite.items[1].Header().ID,
		suite.items[2].Header().ID,
	}

	_, err := Arrange(suite.items, ids)
	suite.ErrorIs(err, ErrInvalidOrder)

	_, err = Arrange(suite.items, ids[:2])
	suite.ErrorIs(err, ErrInvalidOrder)
}

func (suite *orderTestSuite) TestRenumber() {
	items := []Item{suite.items[0], suite.items[2], suite.items[3]}

	changed := Renumber(items)
	suite.Len(changed, 2)
	suite.Equal(1, suite.items[2].Header().Position)
	suite.Equal(2, suite.items[3].Header().Position)
}

func (suite *orderTestSuite) TestSort() {
	items := []Item{suite.items[3], suite.items[1], suite.items[0], suite.items[2]}
	Sort(items)
	suite.Equal([]string{"a", "b", "c", "d"}, questions(items))
}

func TestOrderTestSuite(t *testing.T) {
	suite.Run(t, new(orderTestSuite))
}

type pageTestSuite struct {
	suite.Suite
	items map[Kind][]Item
	faq   *FAQ
}

func (suite *pageTestSuite) SetupTest() {
	published := &FAQ{Question: "Visible?", Answer: "Yes."}
	published.Published = true
	Init(published)

	draft := &FAQ{Question: "Hidden?", Answer: "Yes."}
	draft.Position = 1
	Init(draft)

	service := &Offering{
		Title:       "Work permits",
		Description: "Sponsored",
		Features:    []string{"Employer search", ""},
	}
	service.Published = true
	Init(service)

	suite.items = map[Kind][]Item{
		FAQs:     {published, draft},
		Services: {service},
	}
	suite.faq = published
}

func (suite *pageTestSuite) TestNewPageSkipsDrafts() {
	page := NewPage(DefaultHero(), DefaultContact(), DefaultSettings(), suite.items)
	suite.Len(page.FAQs, 1)
	suite.Len(page.Services, 1)
	suite.NotNil(page.Steps)
}

func (suite *pageTestSuite) TestCollectIncludesDrafts() {
	source := Collect(DefaultHero(), DefaultContact(), DefaultSettings(), suite.items)

	count := 0
	for key := range source {
		if len(key) > 5 && key[:5] == "faqs." {
			count++
		}
	}

	// question, answer per faq; empty category is skipped
	suite.Equal(4, count)
}

func (suite *pageTestSuite) TestSourceKeys() {
	page := NewPage(DefaultHero(), DefaultContact(), DefaultSettings(), suite.items)
	source := page.Source()

	service := page.Services[0]
	suite.Equal("Employer search", source[Key(service)+".features.0"])

	_, ok := source[Key(service)+".features.1"]
	suite.False(ok)

	suite.Equal("Visible?", source[Key(suite.faq)+".question"])
}

func (suite *pageTestSuite) TestLocalize() {
	page := NewPage(DefaultHero(), DefaultContact(), DefaultSettings(), suite.items)

	lookup := map[string]string{
		Key(suite.faq) + ".question": "¿Visible?",
		"hero.title":                 "",
	}

	n := page.Localize(func(key string) (string, bool) {
		v, ok := lookup[key]
		return v, ok
	})

	suite.Equal(1, n)
	suite.Equal("¿Visible?", page.FAQs[0].Question)
	suite.Equal(DefaultHero().Title, page.Hero.Title)
}

func TestPageTestSuite(t *testing.T) {
	suite.Run(t, new(pageTestSuite))
}
