package services

import (
	"time"

	"shinejewelry/internal/domain"
	"shinejewelry/internal/store"
	"shinejewelry/internal/uploads"
	"shinejewelry/internal/validate"
)

type CatalogService struct {
	Store *store.Store
	Files *uploads.Manager
}

func NewCatalogService(st *store.Store, files *uploads.Manager) *CatalogService {
	return &CatalogService{Store: st, Files: files}
}

func (s *CatalogService) Read() (store.Snapshot, error) {
	return s.Store.Read()
}

// AddCategory normalizes the id to a url-safe slug and the section to
// silver/stainless. Duplicate ids are rejected.
func (s *CatalogService) AddCategory(c domain.Category) (domain.Category, error) {
	c.ID = validate.Slug(c.ID)
	if c.ID == "" || c.Name == "" {
		return domain.Category{}, ErrMissingFields
	}
	c.Section = validate.Section(c.Section)

	err := s.Store.Mutate(func(d *store.Data, _ []domain.Product) error {
		for _, existing := range d.Categories {
			if existing.ID == c.ID {
				return ErrCategoryExists
			}
		}
		d.Categories = append(d.Categories, c)
		return nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

// AddProduct creates a dynamic product. images are web-relative paths
// already saved by the caller; category must exist in the dynamic set.
func (s *CatalogService) AddProduct(title string, price float64, category, desc string, images []string) (domain.Product, error) {
	if title == "" || category == "" {
		return domain.Product{}, ErrMissingFields
	}
	if price < 0 {
		return domain.Product{}, ErrInvalidPrice
	}
	if images == nil {
		images = []string{}
	}

	p := domain.Product{
		ID:       validate.ProductID(title, time.Now().UnixMilli()),
		Title:    title,
		Price:    price,
		Category: category,
		Images:   images,
		Desc:     desc,
	}
	err := s.Store.Mutate(func(d *store.Data, _ []domain.Product) error {
		if !hasCategory(d.Categories, category) {
			return ErrCategoryNotFound
		}
		d.Products = append(d.Products, p)
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// ProductPatch carries a partial admin edit. Nil pointers mean "leave
// untouched"; NewImages replace or append depending on ReplaceImages.
type ProductPatch struct {
	Title         *string
	Desc          *string
	Price         *float64
	ReplaceImages bool
	NewImages     []string
}

// UpdateProduct applies a partial edit. Editing a seed-only product
// first forks it into the dynamic store (copy-on-write); later edits
// mutate that fork in place.
func (s *CatalogService) UpdateProduct(id string, patch ProductPatch) (domain.Product, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return domain.Product{}, ErrInvalidPrice
	}

	var updated domain.Product
	err := s.Store.Mutate(func(d *store.Data, seed []domain.Product) error {
		idx := -1
		for i := range d.Products {
			if d.Products[i].ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			forked := false
			for _, sp := range seed {
				if sp.ID == id {
					d.Products = append(d.Products, sp)
					idx = len(d.Products) - 1
					forked = true
					break
				}
			}
			if !forked {
				return ErrProductNotFound
			}
		}

		p := &d.Products[idx]
		if patch.Title != nil && *patch.Title != "" {
			p.Title = *patch.Title
		}
		if patch.Desc != nil {
			p.Desc = *patch.Desc
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}

		switch {
		case len(patch.NewImages) > 0 && patch.ReplaceImages:
			s.Files.RemoveAll(p.Images)
			p.Images = patch.NewImages
		case len(patch.NewImages) > 0:
			p.Images = appendUnique(p.Images, patch.NewImages)
		case patch.ReplaceImages:
			s.Files.RemoveAll(p.Images)
			p.Images = []string{}
		}

		updated = *p
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return updated, nil
}

// DeleteProduct hard-deletes dynamic products (with their uploads) and
// tombstones everything else. It never fails on an unknown id.
func (s *CatalogService) DeleteProduct(id string) (tombstoned bool, err error) {
	err = s.Store.Mutate(func(d *store.Data, _ []domain.Product) error {
		for i := range d.Products {
			if d.Products[i].ID == id {
				s.Files.RemoveAll(d.Products[i].Images)
				d.Products = append(d.Products[:i], d.Products[i+1:]...)
				return nil
			}
		}
		d.RemovedProducts = appendUnique(d.RemovedProducts, []string{id})
		tombstoned = true
		return nil
	})
	return tombstoned, err
}

// DeleteCategory cascades: dynamic products of the category are
// hard-deleted with their images, seed products are tombstoned, and the
// category's upload directory is removed. Always succeeds.
func (s *CatalogService) DeleteCategory(id string) (deletedProducts int, err error) {
	id = validate.Slug(id)
	err = s.Store.Mutate(func(d *store.Data, seed []domain.Product) error {
		found := false
		for i := range d.Categories {
			if d.Categories[i].ID == id {
				d.Categories = append(d.Categories[:i], d.Categories[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			d.RemovedCategories = appendUnique(d.RemovedCategories, []string{id})
		}

		kept := d.Products[:0]
		for _, p := range d.Products {
			if p.Category == id {
				s.Files.RemoveAll(p.Images)
				deletedProducts++
				continue
			}
			kept = append(kept, p)
		}
		d.Products = kept

		for _, sp := range seed {
			if sp.Category == id {
				d.RemovedProducts = appendUnique(d.RemovedProducts, []string{sp.ID})
			}
		}
		return nil
	})
	if err == nil {
		s.Files.RemoveCategoryDir(id)
	}
	return deletedProducts, err
}

func hasCategory(cats []domain.Category, id string) bool {
	for _, c := range cats {
		if c.ID == id {
			return true
		}
	}
	return false
}

func appendUnique(dst []string, add []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range add {
		if !seen[v] {
			dst = append(dst, v)
			seen[v] = true
		}
	}
	return dst
}
