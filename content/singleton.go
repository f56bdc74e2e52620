package content

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

type Hero struct {
	Badge     string    `json:"badge"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	CTALabel  string    `json:"cta_label"`
	CTAURL    string    `json:"cta_url"`
	ImageURL  string    `json:"image_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

func DefaultHero() *Hero {
	return &Hero{
		Title:    "Work permits and visas, handled end to end",
		Subtitle: "We prepare, file and follow up on your application so you can focus on the move.",
		CTALabel: "Book a consultation",
		CTAURL:   "#contact",
	}
}

func (h *Hero) Fields() []Field {
	return []Field{
		{"badge", &h.Badge},
		{"title", &h.Title},
		{"subtitle", &h.Subtitle},
		{"cta_label", &h.CTALabel},
	}
}

func (h *Hero) Validate() error {
	if strings.TrimSpace(h.Title) == "" {
		return errors.New("title is required")
	}

	// in-page anchors are allowed
	if !strings.HasPrefix(h.CTAURL, "#") {
		if err := validateURL("cta_url", h.CTAURL); err != nil {
			return err
		}
	}

	return validateURL("image_url", h.ImageURL)
}

type Contact struct {
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	WhatsApp  string    `json:"whatsapp"`
	Address   string    `json:"address"`
	Hours     string    `json:"hours"`
	MapURL    string    `json:"map_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

func DefaultContact() *Contact {
	return new(Contact)
}

func (c *Contact) Fields() []Field {
	return []Field{
		{"address", &c.Address},
		{"hours", &c.Hours},
	}
}

func (c *Contact) Validate() error {
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return errors.New("email is invalid")
		}
	}

	return validateURL("map_url", c.MapURL)
}

type Settings struct {
	SiteName        string    `json:"site_name"`
	Tagline         string    `json:"tagline"`
	MetaDescription string    `json:"meta_description"`
	FooterText      string    `json:"footer_text"`
	LogoURL         string    `json:"logo_url"`
	DefaultLocale   string    `json:"default_locale"`
	Locales         []string  `json:"locales"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func DefaultSettings() *Settings {
	return &Settings{
		SiteName:      "Visa Services",
		DefaultLocale: "en",
		Locales:       []string{"en"},
	}
}

func (s *Settings) Fields() []Field {
	return []Field{
		{"site_name", &s.SiteName},
		{"tagline", &s.Tagline},
		{"meta_description", &s.MetaDescription},
		{"footer_text", &s.FooterText},
	}
}

func (s *Settings) Validate() error {
	if strings.TrimSpace(s.SiteName) == "" {
		return errors.New("site_name is required")
	}

	if s.DefaultLocale == "" {
		return errors.New("default_locale is required")
	}

	found := false
	for _, l := range s.Locales {
		if l == s.DefaultLocale {
			found = true
			break
		}
	}

	if !found {
		return errors.New("default_locale must be one of locales")
	}

	return validateURL("logo_url", s.LogoURL)
}
