package content

// Page is everything the public landing page renders.
type Page struct {
	Hero         *Hero          `json:"hero"`
	Contact      *Contact       `json:"contact"`
	Settings     *Settings      `json:"settings"`
	Services     []*Offering    `json:"services"`
	Testimonials []*Testimonial `json:"testimonials"`
	FAQs         []*FAQ         `json:"faqs"`
	Steps        []*Step        `json:"steps"`
}

// NewPage assembles a page from singletons and the published items of every
// kind, in position order.
func NewPage(hero *Hero, contact *Contact, settings *Settings, items map[Kind][]Item) *Page {
	return newPage(hero, contact, settings, items, false)
}

// Collect returns the translation source texts of all content, drafts
// included, so translations are ready before an item gets published.
func Collect(hero *Hero, contact *Contact, settings *Settings, items map[Kind][]Item) map[string]string {
	return newPage(hero, contact, settings, items, true).Source()
}

func newPage(hero *Hero, contact *Contact, settings *Settings, items map[Kind][]Item, drafts bool) *Page {
	p := &Page{
		Hero:         hero,
		Contact:      contact,
		Settings:     settings,
		Services:     make([]*Offering, 0),
		Testimonials: make([]*Testimonial, 0),
		FAQs:         make([]*FAQ, 0),
		Steps:        make([]*Step, 0),
	}

	for _, kind := range Kinds {
		list := items[kind]
		Sort(list)

		for _, item := range list {
			if !drafts && !item.Header().Published {
				continue
			}

			switch v := item.(type) {
			case *Offering:
				p.Services = append(p.Services, v)
			case *Testimonial:
				p.Testimonials = append(p.Testimonials, v)
			case *FAQ:
				p.FAQs = append(p.FAQs, v)
			case *Step:
				p.Steps = append(p.Steps, v)
			}
		}
	}

	return p
}

// Texts walks every translatable field of the page, calling fn with the full
// translation key.
func (p *Page) Texts(fn func(key string, f Field)) {
	walk := func(prefix string, fields []Field) {
		for _, f := range fields {
			fn(prefix+"."+f.Name, f)
		}
	}

	walk(string(HeroSection), p.Hero.Fields())
	walk(string(ContactSection), p.Contact.Fields())
	walk(string(SettingsSection), p.Settings.Fields())

	for _, s := range p.Services {
		walk(Key(s), s.Fields())
	}
	for _, t := range p.Testimonials {
		walk(Key(t), t.Fields())
	}
	for _, f := range p.FAQs {
		walk(Key(f), f.Fields())
	}
	for _, s := range p.Steps {
		walk(Key(s), s.Fields())
	}
}

// Source returns the non-empty base-language texts of the page keyed by
// translation key.
func (p *Page) Source() map[string]string {
	texts := make(map[string]string)
	p.Texts(func(key string, f Field) {
		if *f.Value == "" {
			return
		}

		texts[key] = *f.Value
	})

	return texts
}

// Localize replaces translatable fields with values found by lookup. Fields
// without a translation keep their base text. It reports how many fields
// were replaced.
func (p *Page) Localize(lookup func(key string) (string, bool)) int {
	n := 0
	p.Texts(func(key string, f Field) {
		if *f.Value == "" {
			return
		}

		if v, ok := lookup(key); ok && v != "" {
			*f.Value = v
			n++
		}
	})

	return n
}
