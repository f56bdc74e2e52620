package cms

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/flarexio/cms/content"
)

// Seed is the initial content of a site, written in YAML with the same field
// names as the JSON API.
type Seed struct {
	Hero     *content.Hero
	Contact  *content.Contact
	Settings *content.Settings
	Items    map[content.Kind][]content.Item
}

func LoadSeed(r io.Reader) (*Seed, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	seed := &Seed{
		Items: make(map[content.Kind][]content.Item),
	}

	for name, value := range raw {
		// YAML maps are re-encoded as JSON to reuse the API field names
		data, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}

		switch content.Section(name) {
		case content.HeroSection:
			if err := json.Unmarshal(data, &seed.Hero); err != nil {
				return nil, err
			}
			continue

		case content.ContactSection:
			if err := json.Unmarshal(data, &seed.Contact); err != nil {
				return nil, err
			}
			continue

		case content.SettingsSection:
			if err := json.Unmarshal(data, &seed.Settings); err != nil {
				return nil, err
			}
			continue
		}

		kind, err := content.ParseKind(name)
		if err != nil {
			return nil, err
		}

		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}

		for _, entry := range list {
			item, err := content.NewItem(kind)
			if err != nil {
				return nil, err
			}

			if err := json.Unmarshal(entry, item); err != nil {
				return nil, err
			}

			seed.Items[kind] = append(seed.Items[kind], item)
		}
	}

	return seed, nil
}

// Apply writes the seed through the service. Items are appended after the
// existing ones, in file order.
func (s *Seed) Apply(svc Service) (int, error) {
	count := 0

	if s.Hero != nil {
		if _, err := svc.UpdateHero(s.Hero); err != nil {
			return count, err
		}
		count++
	}

	if s.Contact != nil {
		if _, err := svc.UpdateContact(s.Contact); err != nil {
			return count, err
		}
		count++
	}

	if s.Settings != nil {
		if _, err := svc.UpdateSettings(s.Settings); err != nil {
			return count, err
		}
		count++
	}

	for _, kind := range content.Kinds {
		for _, item := range s.Items[kind] {
			if _, err := svc.CreateItem(item); err != nil {
				return count, err
			}
			count++
		}
	}

	return count, nil
}
