package translation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrTranslationNotFound = errors.New("translation not found")
	ErrLocaleInvalid       = errors.New("invalid locale")
	ErrKeyInvalid          = errors.New("invalid key")
	ErrNoTranslator        = errors.New("translator not configured")
)

// Source tells how a translation value was produced.
type Source int

const (
	Manual Source = iota
	Synced
	Auto
)

func ParseSource(source string) (Source, error) {
	source = strings.ToLower(source)
	switch source {
	case "manual":
		return Manual, nil
	case "sync":
		return Synced, nil
	case "auto":
		return Auto, nil
	default:
		return -1, errors.New("invalid source")
	}
}

func (s Source) String() string {
	switch s {
	case Manual:
		return "manual"
	case Synced:
		return "sync"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

func (s Source) MarshalJSON() ([]byte, error) {
	jsonStr := `"` + s.String() + `"`
	return []byte(jsonStr), nil
}

func (s *Source) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	source, err := ParseSource(raw)
	if err != nil {
		return err
	}

	*s = source
	return nil
}

type Translation struct {
	Key    string `json:"key"`
	Locale string `json:"locale"`
	Value  string `json:"value"`
	Source Source `json:"source"`

	// Checksum of the base-locale text this value was written against.
	Checksum  string    `json:"checksum,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewTranslation(locale string, key string, value string, source Source) *Translation {
	return &Translation{
		Key:       key,
		Locale:    locale,
		Value:     value,
		Source:    source,
		UpdatedAt: time.Now(),
	}
}

// Checksum fingerprints a base-locale text.
func Checksum(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:8])
}

// ValidateKey accepts dot separated, non-empty segments.
func ValidateKey(key string) error {
	if key == "" {
		return ErrKeyInvalid
	}

	for _, seg := range strings.Split(key, ".") {
		if seg == "" || strings.ContainsAny(seg, " \t\n/") {
			return ErrKeyInvalid
		}
	}

	return nil
}

type Repository interface {
	// Command

	Store(t *Translation) error
	StoreBatch(ts []*Translation) error
	Delete(locale string, key string) error
	DeleteKeys(keys []string) error

	// Query

	Find(locale string, key string) (*Translation, error)
	ListByLocale(locale string) ([]*Translation, error)
	ListAll() ([]*Translation, error)
	Locales() ([]string, error)

	Close() error
}
