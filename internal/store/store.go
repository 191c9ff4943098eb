package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"shinejewelry/internal/domain"
	"shinejewelry/internal/validate"
)

// Data is the single persisted dynamic document: the admin overlay plus
// the tombstone sets marking seed entries as logically deleted.
type Data struct {
	Categories        []domain.Category `json:"categories"`
	Products          []domain.Product  `json:"products"`
	RemovedProducts   []string          `json:"removedProducts"`
	RemovedCategories []string          `json:"removedCategories"`
}

type Snapshot struct {
	Categories []domain.Category
	Products   []domain.Product
}

// Store merges an immutable seed file with the dynamic document. All
// mutations are serialized by mu and persisted via temp-file + rename,
// so concurrent admin writes cannot interleave or truncate the file.
type Store struct {
	mu       sync.Mutex
	dataPath string
	seedPath string
}

func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &Store{
		dataPath: filepath.Join(dataDir, "products.json"),
		seedPath: filepath.Join(dataDir, "static_products.json"),
	}, nil
}

func (s *Store) load() (Data, error) {
	var d Data
	b, err := os.ReadFile(s.dataPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return normalize(d), nil
		}
		return normalize(d), err
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return normalize(Data{}), err
	}
	return normalize(d), nil
}

func normalize(d Data) Data {
	if d.Categories == nil {
		d.Categories = []domain.Category{}
	}
	if d.Products == nil {
		d.Products = []domain.Product{}
	}
	if d.RemovedProducts == nil {
		d.RemovedProducts = []string{}
	}
	if d.RemovedCategories == nil {
		d.RemovedCategories = []string{}
	}
	return d
}

func (s *Store) save(d Data) error {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.dataPath), "products-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.dataPath)
}

// Seed loads the immutable baseline products. A missing seed file is an
// empty seed, not an error.
func (s *Store) Seed() ([]domain.Product, error) {
	b, err := os.ReadFile(s.seedPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Product{}, nil
		}
		return nil, err
	}
	var seed struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, err
	}
	if seed.Products == nil {
		seed.Products = []domain.Product{}
	}
	return seed.Products, nil
}

// Read merges seed and dynamic products (dynamic wins on id collision),
// drops anything tombstoned directly or via its category, and normalizes
// surviving category sections.
func (s *Store) Read() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load()
	if err != nil {
		return Snapshot{}, err
	}
	seed, err := s.Seed()
	if err != nil {
		return Snapshot{}, err
	}

	merged := make(map[string]domain.Product, len(seed)+len(d.Products))
	order := make([]string, 0, len(seed)+len(d.Products))
	for _, p := range seed {
		if _, ok := merged[p.ID]; !ok {
			order = append(order, p.ID)
		}
		merged[p.ID] = p
	}
	for _, p := range d.Products {
		if _, ok := merged[p.ID]; !ok {
			order = append(order, p.ID)
		}
		merged[p.ID] = p
	}

	removedIDs := toSet(d.RemovedProducts)
	removedCats := toSet(d.RemovedCategories)

	products := make([]domain.Product, 0, len(order))
	for _, id := range order {
		p := merged[id]
		if removedIDs[p.ID] || removedCats[p.Category] {
			continue
		}
		// Offer pricing needs both oldPrice and offerPrice; a half-set
		// pair is cleared so the storefront never renders a bogus offer.
		if !p.OnOffer() {
			p.OldPrice, p.OfferPrice = 0, 0
		}
		products = append(products, p)
	}

	categories := make([]domain.Category, 0, len(d.Categories))
	for _, c := range d.Categories {
		if removedCats[c.ID] {
			continue
		}
		c.Section = validate.Section(c.Section)
		categories = append(categories, c)
	}

	return Snapshot{Categories: categories, Products: products}, nil
}

// Mutate runs fn on the loaded document under the store lock and
// persists the result atomically. fn also receives the seed so
// mutations can fork or tombstone seed-only entries.
func (s *Store) Mutate(fn func(d *Data, seed []domain.Product) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load()
	if err != nil {
		return err
	}
	seed, err := s.Seed()
	if err != nil {
		return err
	}
	if err := fn(&d, seed); err != nil {
		return err
	}
	return s.save(d)
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
