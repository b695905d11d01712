package domain

// Category is the catalog category aggregate root.
type Category struct {
	Entity
	Name        string    `gorm:"size:255;not null;index" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Products    []Product `gorm:"many2many:product_categories" json:"-"`
}

// NewCategory creates a category and returns it with its Created event.
func NewCategory(name, description string) (*Category, Event) {
	category := &Category{
		Entity:      NewEntity(),
		Name:        name,
		Description: description,
	}
	return category, category.raise(CategoryCreated)
}

// Update replaces the category fields and raises one Updated event.
func (c *Category) Update(name, description string) Event {
	c.Name = name
	c.Description = description
	return c.raise(CategoryUpdated)
}

// Delete soft-deletes the category. A repeated Delete raises no event.
func (c *Category) Delete() (Event, bool) {
	if !c.markDeleted() {
		return Event{}, false
	}
	return c.raise(CategoryDeleted), true
}

func (c *Category) raise(messageType string) Event {
	return newEvent(CategoryAggregate, messageType, c.ID, CategoryEvent{
		CategoryID:  c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsDeleted:   c.IsDeleted,
	})
}
