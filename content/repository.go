package content

type Repository interface {
	// Command

	StoreHero(h *Hero) error
	StoreContact(c *Contact) error
	StoreSettings(s *Settings) error
	StoreItems(items ...Item) error
	DeleteItem(kind Kind, id ItemID) error

	// Query

	// Singletons that were never stored come back as their defaults.
	Hero() (*Hero, error)
	Contact() (*Contact, error)
	Settings() (*Settings, error)

	ListItems(kind Kind) ([]Item, error)
	FindItem(kind Kind, id ItemID) (Item, error)

	Close() error
}
