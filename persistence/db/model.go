package db

import (
	"time"

	"github.com/flarexio/core/model"

	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/translation"
)

// singletonID is the primary key of the single hero, contact and settings row.
const singletonID = 1

type Hero struct {
	ID        uint `gorm:"primaryKey"`
	Badge     string
	Title     string
	Subtitle  string
	CTALabel  string
	CTAURL    string
	ImageURL  string
	UpdatedAt time.Time
}

func (Hero) TableName() string { return "hero" }

func NewHero(h *content.Hero) *Hero {
	return &Hero{
		ID:        singletonID,
		Badge:     h.Badge,
		Title:     h.Title,
		Subtitle:  h.Subtitle,
		CTALabel:  h.CTALabel,
		CTAURL:    h.CTAURL,
		ImageURL:  h.ImageURL,
		UpdatedAt: h.UpdatedAt,
	}
}

func (h *Hero) reconstitute() *content.Hero {
	return &content.Hero{
		Badge:     h.Badge,
		Title:     h.Title,
		Subtitle:  h.Subtitle,
		CTALabel:  h.CTALabel,
		CTAURL:    h.CTAURL,
		ImageURL:  h.ImageURL,
		UpdatedAt: h.UpdatedAt,
	}
}

type Contact struct {
	ID        uint `gorm:"primaryKey"`
	Phone     string
	Email     string
	WhatsApp  string
	Address   string
	Hours     string
	MapURL    string
	UpdatedAt time.Time
}

func (Contact) TableName() string { return "contact" }

func NewContact(c *content.Contact) *Contact {
	return &Contact{
		ID:        singletonID,
		Phone:     c.Phone,
		Email:     c.Email,
		WhatsApp:  c.WhatsApp,
		Address:   c.Address,
		Hours:     c.Hours,
		MapURL:    c.MapURL,
		UpdatedAt: c.UpdatedAt,
	}
}

func (c *Contact) reconstitute() *content.Contact {
	return &content.Contact{
		Phone:     c.Phone,
		Email:     c.Email,
		WhatsApp:  c.WhatsApp,
		Address:   c.Address,
		Hours:     c.Hours,
		MapURL:    c.MapURL,
		UpdatedAt: c.UpdatedAt,
	}
}

type Settings struct {
	ID              uint `gorm:"primaryKey"`
	SiteName        string
	Tagline         string
	MetaDescription string
	FooterText      string
	LogoURL         string
	DefaultLocale   string
	Locales         []string `gorm:"serializer:json"`
	UpdatedAt       time.Time
}

func (Settings) TableName() string { return "settings" }

func NewSettings(s *content.Settings) *Settings {
	return &Settings{
		ID:              singletonID,
		SiteName:        s.SiteName,
		Tagline:         s.Tagline,
		MetaDescription: s.MetaDescription,
		FooterText:      s.FooterText,
		LogoURL:         s.LogoURL,
		DefaultLocale:   s.DefaultLocale,
		Locales:         s.Locales,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (s *Settings) reconstitute() *content.Settings {
	return &content.Settings{
		SiteName:        s.SiteName,
		Tagline:         s.Tagline,
		MetaDescription: s.MetaDescription,
		FooterText:      s.FooterText,
		LogoURL:         s.LogoURL,
		DefaultLocale:   s.DefaultLocale,
		Locales:         s.Locales,
		UpdatedAt:       s.UpdatedAt,
	}
}

// Entry holds the columns shared by every list table.
type Entry struct {
	ID        string `gorm:"primaryKey"`
	Position  int    `gorm:"index"`
	Published bool
	DataModel
}

func NewEntry(e *content.Entry) Entry {
	return Entry{
		ID:        e.ID.String(),
		Position:  e.Position,
		Published: e.Published,
		DataModel: DataModel{
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
		},
	}
}

func (e *Entry) reconstitute() content.Entry {
	id, _ := content.ParseID(e.ID)

	return content.Entry{
		ID:        id,
		Position:  e.Position,
		Published: e.Published,
		Model: model.Model{
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
		},
	}
}

type record interface {
	reconstitute() content.Item
}

type Offering struct {
	Entry
	Title       string
	Description string
	Icon        string
	Features    []string `gorm:"serializer:json"`
}

func (Offering) TableName() string { return "services" }

func (o *Offering) reconstitute() content.Item {
	return &content.Offering{
		Entry:       o.Entry.reconstitute(),
		Title:       o.Title,
		Description: o.Description,
		Icon:        o.Icon,
		Features:    o.Features,
	}
}

type Testimonial struct {
	Entry
	Author    string
	Role      string
	Country   string
	Quote     string
	Rating    int
	AvatarURL string
}

func (Testimonial) TableName() string { return "testimonials" }

func (t *Testimonial) reconstitute() content.Item {
	return &content.Testimonial{
		Entry:     t.Entry.reconstitute(),
		Author:    t.Author,
		Role:      t.Role,
		Country:   t.Country,
		Quote:     t.Quote,
		Rating:    t.Rating,
		AvatarURL: t.AvatarURL,
	}
}

type FAQ struct {
	Entry
	Question string
	Answer   string
	Category string
}

func (FAQ) TableName() string { return "faqs" }

func (f *FAQ) reconstitute() content.Item {
	return &content.FAQ{
		Entry:    f.Entry.reconstitute(),
		Question: f.Question,
		Answer:   f.Answer,
		Category: f.Category,
	}
}

type Step struct {
	Entry
	Title       string
	Description string
	Duration    string
}

func (Step) TableName() string { return "steps" }

func (s *Step) reconstitute() content.Item {
	return &content.Step{
		Entry:       s.Entry.reconstitute(),
		Title:       s.Title,
		Description: s.Description,
		Duration:    s.Duration,
	}
}

// NewRecord converts a domain item to its data model.
func NewRecord(item content.Item) (any, error) {
	entry := NewEntry(item.Header())

	switch v := item.(type) {
	case *content.Offering:
		return &Offering{entry, v.Title, v.Description, v.Icon, v.Features}, nil
	case *content.Testimonial:
		return &Testimonial{entry, v.Author, v.Role, v.Country, v.Quote, v.Rating, v.AvatarURL}, nil
	case *content.FAQ:
		return &FAQ{entry, v.Question, v.Answer, v.Category}, nil
	case *content.Step:
		return &Step{entry, v.Title, v.Description, v.Duration}, nil
	default:
		return nil, content.ErrKindInvalid
	}
}

func tableModel(kind content.Kind) (any, error) {
	switch kind {
	case content.Services:
		return &Offering{}, nil
	case content.Testimonials:
		return &Testimonial{}, nil
	case content.FAQs:
		return &FAQ{}, nil
	case content.Steps:
		return &Step{}, nil
	default:
		return nil, content.ErrKindInvalid
	}
}

type Translation struct {
	Locale    string `gorm:"primaryKey"`
	Key       string `gorm:"primaryKey"`
	Value     string
	Source    int
	Checksum  string
	UpdatedAt time.Time
}

func NewTranslation(t *translation.Translation) *Translation {
	return &Translation{
		Locale:    t.Locale,
		Key:       t.Key,
		Value:     t.Value,
		Source:    int(t.Source),
		Checksum:  t.Checksum,
		UpdatedAt: t.UpdatedAt,
	}
}

func (t *Translation) reconstitute() *translation.Translation {
	return &translation.Translation{
		Key:       t.Key,
		Locale:    t.Locale,
		Value:     t.Value,
		Source:    translation.Source(t.Source),
		Checksum:  t.Checksum,
		UpdatedAt: t.UpdatedAt,
	}
}
