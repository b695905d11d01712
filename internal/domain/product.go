package domain

import (
	"github.com/google/uuid"
)

// Product is the catalog product aggregate root.
type Product struct {
	Entity
	Name          string         `gorm:"size:255;not null;index" json:"name"`
	Description   string         `gorm:"size:255" json:"description"`
	Price         float64        `gorm:"not null" json:"price"`
	StockQuantity int            `gorm:"not null" json:"stock_quantity"`
	SKU           string         `gorm:"size:255;index" json:"sku"`
	Brand         string         `gorm:"size:255;index" json:"brand"`
	Categories    []Category     `gorm:"many2many:product_categories" json:"categories"`
	Images        []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images"`
	Tags          []ProductTag   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"tags"`
}

// ProductImage is an owned image reference of a product.
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	URL       string    `gorm:"size:255;not null" json:"url"`
}

// ProductTag is an owned tag of a product.
type ProductTag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
}

// NewProduct creates a product and returns it with its Created event.
func NewProduct(name, description string, price float64, stockQuantity int, sku, brand string) (*Product, Event) {
	product := &Product{
		Entity:        NewEntity(),
		Name:          name,
		Description:   description,
		Price:         price,
		StockQuantity: stockQuantity,
		SKU:           sku,
		Brand:         brand,
	}
	return product, product.raise(ProductCreated)
}

// Update replaces the scalar fields of the product. It raises exactly one
// Updated event no matter how many fields changed.
func (p *Product) Update(name, description string, price float64, stockQuantity int, sku, brand string) Event {
	p.Name = name
	p.Description = description
	p.Price = price
	p.StockQuantity = stockQuantity
	p.SKU = sku
	p.Brand = brand
	return p.raise(ProductUpdated)
}

// AddCategories links the product to the given categories.
func (p *Product) AddCategories(categories []Category) Event {
	p.Categories = append(p.Categories, categories...)
	return p.raise(ProductUpdated)
}

// RemoveCategories unlinks the given categories from the product.
func (p *Product) RemoveCategories(categories []Category) Event {
	removed := make(map[uuid.UUID]bool, len(categories))
	for _, c := range categories {
		removed[c.ID] = true
	}
	kept := p.Categories[:0]
	for _, c := range p.Categories {
		if !removed[c.ID] {
			kept = append(kept, c)
		}
	}
	p.Categories = kept
	return p.raise(ProductUpdated)
}

// AddImages appends owned image references.
func (p *Product) AddImages(urls []string) Event {
	for _, url := range urls {
		p.Images = append(p.Images, ProductImage{ProductID: p.ID, URL: url})
	}
	return p.raise(ProductUpdated)
}

// AddTags appends owned tags.
func (p *Product) AddTags(names []string) Event {
	for _, name := range names {
		p.Tags = append(p.Tags, ProductTag{ProductID: p.ID, Name: name})
	}
	return p.raise(ProductUpdated)
}

// Delete soft-deletes the product. The second return value reports whether
// an event was raised; a repeated Delete is a no-op.
func (p *Product) Delete() (Event, bool) {
	if !p.markDeleted() {
		return Event{}, false
	}
	return p.raise(ProductDeleted), true
}

func (p *Product) raise(messageType string) Event {
	return newEvent(ProductAggregate, messageType, p.ID, p.snapshot())
}

func (p *Product) snapshot() ProductEvent {
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.URL)
	}
	tags := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		tags = append(tags, tag.Name)
	}
	categoryIDs := make([]uuid.UUID, 0, len(p.Categories))
	for _, c := range p.Categories {
		categoryIDs = append(categoryIDs, c.ID)
	}
	return ProductEvent{
		ProductID:     p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		SKU:           p.SKU,
		Brand:         p.Brand,
		Images:        images,
		Tags:          tags,
		CategoryIDs:   categoryIDs,
		IsDeleted:     p.IsDeleted,
	}
}
