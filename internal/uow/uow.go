// Package uow coordinates entity persistence and event-log appends as one
// atomic commit.
package uow

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/backstage/services/catalog/internal/domain"
	"example.com/backstage/services/catalog/internal/eventstore"
	"example.com/backstage/services/catalog/internal/repository"
)

type registrationKind int

const (
	registerNew registrationKind = iota
	registerDirty
)

type registration struct {
	kind      registrationKind
	aggregate domain.Aggregate
	events    []domain.Event
}

// UnitOfWork collects aggregate registrations and commits them, together
// with the events each mutation raised, in a single transaction. A unit of
// work is scoped to one command invocation and is not safe for concurrent
// use.
type UnitOfWork struct {
	db    *gorm.DB
	store eventstore.Store
	regs  []registration
}

// New creates a unit of work over the given database handle and event store.
func New(db *gorm.DB, store eventstore.Store) *UnitOfWork {
	return &UnitOfWork{db: db, store: store}
}

// RegisterNew schedules a freshly constructed aggregate for insertion
// along with the events it raised.
func (u *UnitOfWork) RegisterNew(aggregate domain.Aggregate, events ...domain.Event) {
	u.regs = append(u.regs, registration{
		kind:      registerNew,
		aggregate: aggregate,
		events:    events,
	})
}

// RegisterDirty schedules a loaded-and-mutated aggregate for a
// version-guarded update along with the events it raised.
func (u *UnitOfWork) RegisterDirty(aggregate domain.Aggregate, events ...domain.Event) {
	u.regs = append(u.regs, registration{
		kind:      registerDirty,
		aggregate: aggregate,
		events:    events,
	})
}

// Pending returns the number of uncommitted registrations.
func (u *UnitOfWork) Pending() int {
	return len(u.regs)
}

// Commit persists every registered aggregate and appends every registered
// event inside one transaction. On any failure the whole transaction rolls
// back and the registrations stay in place, so the caller can retry the
// commit without re-raising events. On success the registrations are
// cleared. A cancelled context aborts before the transaction starts, never
// mid-commit.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "commit aborted")
	}
	if len(u.regs) == 0 {
		return nil
	}

	// Dirty updates bump the in-memory concurrency token before the guarded
	// UPDATE runs. If the transaction rolls back for any reason, the tokens
	// must roll back with it or the retry would conflict against itself.
	tokens := make([]int, len(u.regs))
	for i, reg := range u.regs {
		tokens[i] = reg.aggregate.GetVersion()
	}

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, reg := range u.regs {
			switch reg.kind {
			case registerNew:
				if err := u.insert(tx, reg.aggregate); err != nil {
					return err
				}
			case registerDirty:
				if err := u.update(tx, reg.aggregate); err != nil {
					return err
				}
			}
			if err := u.store.Append(ctx, tx, reg.events); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		for i, reg := range u.regs {
			reg.aggregate.SetVersion(tokens[i])
		}
		log.Error().Err(err).Int("registrations", len(u.regs)).Msg("Commit failed")
		return err
	}

	u.regs = nil
	return nil
}

func (u *UnitOfWork) insert(tx *gorm.DB, aggregate domain.Aggregate) error {
	if err := tx.Create(aggregate).Error; err != nil {
		return errors.Wrap(err, "failed to insert aggregate")
	}
	return nil
}

// update issues a version-guarded update: a stale concurrency token means
// another writer committed first, and the commit fails with ErrConflict
// instead of overwriting.
func (u *UnitOfWork) update(tx *gorm.DB, aggregate domain.Aggregate) error {
	current := aggregate.GetVersion()
	aggregate.SetVersion(current + 1)

	res := tx.Model(aggregate).
		Where("version = ?", current).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(aggregate)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update aggregate")
	}
	if res.RowsAffected == 0 {
		return repository.ErrConflict
	}

	return u.saveAssociations(tx, aggregate)
}

// saveAssociations synchronizes the collections an update cannot express as
// column writes.
func (u *UnitOfWork) saveAssociations(tx *gorm.DB, aggregate domain.Aggregate) error {
	product, ok := aggregate.(*domain.Product)
	if !ok {
		return nil
	}

	if err := tx.Model(product).Association("Categories").Replace(product.Categories); err != nil {
		return errors.Wrap(err, "failed to replace product categories")
	}
	if err := tx.Model(product).Association("Images").Replace(product.Images); err != nil {
		return errors.Wrap(err, "failed to replace product images")
	}
	if err := tx.Model(product).Association("Tags").Replace(product.Tags); err != nil {
		return errors.Wrap(err, "failed to replace product tags")
	}
	return nil
}
