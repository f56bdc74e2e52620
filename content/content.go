package content

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/flarexio/core/model"
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrKindInvalid     = errors.New("invalid kind")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidOrder    = errors.New("invalid order")
)

type Section string

const (
	HeroSection     Section = "hero"
	ContactSection  Section = "contact"
	SettingsSection Section = "settings"
)

// Kind is a list-based section. Its string form is the plural name used in
// routes, topics and translation keys.
type Kind int

const (
	Services Kind = iota
	Testimonials
	FAQs
	Steps
)

var Kinds = []Kind{Services, Testimonials, FAQs, Steps}

func ParseKind(kind string) (Kind, error) {
	kind = strings.ToLower(kind)
	switch kind {
	case "services":
		return Services, nil
	case "testimonials":
		return Testimonials, nil
	case "faqs":
		return FAQs, nil
	case "steps":
		return Steps, nil
	default:
		return -1, ErrKindInvalid
	}
}

func (k Kind) String() string {
	switch k {
	case Services:
		return "services"
	case Testimonials:
		return "testimonials"
	case FAQs:
		return "faqs"
	case Steps:
		return "steps"
	default:
		return "unknown"
	}
}

func (k Kind) Section() Section {
	return Section(k.String())
}

func (k Kind) MarshalJSON() ([]byte, error) {
	jsonStr := `"` + k.String() + `"`
	return []byte(jsonStr), nil
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	kind, err := ParseKind(raw)
	if err != nil {
		return err
	}

	*k = kind
	return nil
}

type ItemID ulid.ULID

func MakeID() ItemID {
	return ItemID(ulid.Make())
}

func ParseID(id string) (ItemID, error) {
	itemID, err := ulid.Parse(id)
	if err != nil {
		return ItemID{}, err
	}
	return ItemID(itemID), nil
}

func (id ItemID) String() string {
	return ulid.ULID(id).String()
}

func (id ItemID) Time() time.Time {
	ms := ulid.ULID(id).Time()
	return ulid.Time(ms)
}

func (id ItemID) IsZero() bool {
	return id == ItemID{}
}

func (id ItemID) MarshalJSON() ([]byte, error) {
	jsonStr := `"` + id.String() + `"`
	return []byte(jsonStr), nil
}

func (id *ItemID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if s == "" {
		*id = ItemID{}
		return nil
	}

	itemID, err := ParseID(s)
	if err != nil {
		return err
	}

	*id = itemID
	return nil
}

// Field points at a translatable text field of a content value.
type Field struct {
	Name  string
	Value *string
}

// Entry is the common header of every list item.
type Entry struct {
	ID        ItemID `json:"id"`
	Position  int    `json:"position"`
	Published bool   `json:"published"`
	model.Model
}

func (e *Entry) Header() *Entry {
	return e
}

// Item is implemented by every list-based content type.
type Item interface {
	Kind() Kind
	Header() *Entry
	Fields() []Field
	Validate() error
}

// NewItem returns an empty item of the given kind.
func NewItem(kind Kind) (Item, error) {
	switch kind {
	case Services:
		return new(Offering), nil
	case Testimonials:
		return new(Testimonial), nil
	case FAQs:
		return new(FAQ), nil
	case Steps:
		return new(Step), nil
	default:
		return nil, ErrKindInvalid
	}
}

// Init assigns identity and timestamps to a newly created item.
func Init(item Item) {
	h := item.Header()
	if h.ID.IsZero() {
		h.ID = MakeID()
	}

	h.CreatedAt = h.ID.Time()
	h.UpdatedAt = time.Now()
}

// Key returns the translation key prefix of an item, e.g. "faqs.01J...".
func Key(item Item) string {
	return item.Kind().String() + "." + item.Header().ID.String()
}

type Offering struct {
	Entry
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Features    []string `json:"features"`
}

func (o *Offering) Kind() Kind { return Services }

func (o *Offering) Fields() []Field {
	fields := []Field{
		{"title", &o.Title},
		{"description", &o.Description},
	}

	for i := range o.Features {
		name := "features." + strconv.Itoa(i)
		fields = append(fields, Field{name, &o.Features[i]})
	}

	return fields
}

func (o *Offering) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return errors.New("title is required")
	}

	if strings.TrimSpace(o.Description) == "" {
		return errors.New("description is required")
	}

	return nil
}

type Testimonial struct {
	Entry
	Author    string `json:"author"`
	Role      string `json:"role"`
	Country   string `json:"country"`
	Quote     string `json:"quote"`
	Rating    int    `json:"rating"`
	AvatarURL string `json:"avatar_url"`
}

func (t *Testimonial) Kind() Kind { return Testimonials }

func (t *Testimonial) Fields() []Field {
	return []Field{
		{"role", &t.Role},
		{"quote", &t.Quote},
	}
}

func (t *Testimonial) Validate() error {
	if strings.TrimSpace(t.Author) == "" {
		return errors.New("author is required")
	}

	if strings.TrimSpace(t.Quote) == "" {
		return errors.New("quote is required")
	}

	if t.Rating < 1 || t.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}

	return validateURL("avatar_url", t.AvatarURL)
}

type FAQ struct {
	Entry
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

func (f *FAQ) Kind() Kind { return FAQs }

func (f *FAQ) Fields() []Field {
	return []Field{
		{"question", &f.Question},
		{"answer", &f.Answer},
		{"category", &f.Category},
	}
}

func (f *FAQ) Validate() error {
	if strings.TrimSpace(f.Question) == "" {
		return errors.New("question is required")
	}

	if strings.TrimSpace(f.Answer) == "" {
		return errors.New("answer is required")
	}

	return nil
}

type Step struct {
	Entry
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
}

func (s *Step) Kind() Kind { return Steps }

func (s *Step) Fields() []Field {
	return []Field{
		{"title", &s.Title},
		{"description", &s.Description},
		{"duration", &s.Duration},
	}
}

func (s *Step) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("title is required")
	}

	return nil
}

func validateURL(name string, raw string) error {
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "/") {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New(name + " must be an absolute url or path")
	}

	return nil
}

// Copy returns a deep copy of an item.
func Copy(item Item) (Item, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}

	cp, err := NewItem(item.Kind())
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cp); err != nil {
		return nil, err
	}

	return cp, nil
}
