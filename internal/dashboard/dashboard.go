// Package dashboard holds the view-model behind the food menu page: the list
// of foods, the add/edit modal flags and the food being edited.
//
// Mutations call the remote resource first and then reconcile the local list
// from the server's response. The list is fetched in bulk only once, by Load.
// Remote calls run without the lock held, so overlapping requests are allowed
// and their results are applied in the order responses arrive, each against
// the current list.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bryan-buckman/gorestaurant/internal/model"
)

var (
	// ErrNoFoodSelected is returned by Update when no food is being edited.
	ErrNoFoodSelected = errors.New("no food selected for editing")
	// ErrFoodNotFound is returned when an ID isn't in the local list.
	ErrFoodNotFound = errors.New("food not in list")
)

// Remote is the /foods resource the dashboard mirrors.
type Remote interface {
	List(ctx context.Context) ([]model.Food, error)
	Create(ctx context.Context, f model.Food) (model.Food, error)
	Update(ctx context.Context, id int64, f model.Food) (model.Food, error)
	Delete(ctx context.Context, id int64) error
}

// Dashboard is safe for concurrent use.
type Dashboard struct {
	remote Remote
	log    zerolog.Logger
	now    func() time.Time

	mu            sync.Mutex
	items         []model.Food
	addModalOpen  bool
	editModalOpen bool
	editing       *model.Food
	loadedAt      time.Time
}

// New creates an empty dashboard. Call Load to populate it.
func New(remote Remote, logger zerolog.Logger) *Dashboard {
	return &Dashboard{
		remote: remote,
		log:    logger.With().Str("component", "dashboard").Logger(),
		now:    time.Now,
		items:  []model.Food{},
	}
}

// Load fetches the full list from the remote resource. It runs once: after a
// successful load further calls do nothing. On failure the list stays empty.
func (d *Dashboard) Load(ctx context.Context) error {
	if d.Loaded() {
		return nil
	}
	foods, err := d.remote.List(ctx)
	if err != nil {
		d.log.Error().Err(err).Str("op", "load").Msg("Failed to load foods")
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.loadedAt.IsZero() {
		return nil
	}
	d.items = dedupe(foods)
	d.loadedAt = d.now()
	d.log.Info().Int("count", len(d.items)).Msg("Loaded foods")
	return nil
}

// Create adds a food. New foods are always available.
func (d *Dashboard) Create(ctx context.Context, in model.FoodInput) (model.Food, error) {
	created, err := d.remote.Create(ctx, in.WithAvailable(true))
	if err != nil {
		d.log.Error().Err(err).Str("op", "create").Str("name", in.Name).Msg("Failed to create food")
		return model.Food{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if i := d.indexOf(created.ID); i >= 0 {
		d.items[i] = created
	} else {
		d.items = append(d.items, created)
	}
	return created, nil
}

// Update sends the food being edited, overridden by in, and replaces the
// local entry with the server's copy.
func (d *Dashboard) Update(ctx context.Context, in model.FoodInput) (model.Food, error) {
	d.mu.Lock()
	if d.editing == nil {
		d.mu.Unlock()
		return model.Food{}, ErrNoFoodSelected
	}
	target := *d.editing
	d.mu.Unlock()

	updated, err := d.remote.Update(ctx, target.ID, target.Merge(in))
	if err != nil {
		d.log.Error().Err(err).Str("op", "update").Int64("id", target.ID).Msg("Failed to update food")
		return model.Food{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.replace(target.ID, updated)
	return updated, nil
}

// SetAvailable marks a listed food as available or not.
func (d *Dashboard) SetAvailable(ctx context.Context, id int64, available bool) (model.Food, error) {
	d.mu.Lock()
	i := d.indexOf(id)
	if i < 0 {
		d.mu.Unlock()
		return model.Food{}, ErrFoodNotFound
	}
	f := d.items[i]
	d.mu.Unlock()

	f.Available = available
	updated, err := d.remote.Update(ctx, id, f)
	if err != nil {
		d.log.Error().Err(err).Str("op", "availability").Int64("id", id).Msg("Failed to change availability")
		return model.Food{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.replace(id, updated)
	return updated, nil
}

// Delete removes a food remotely, then from the list.
func (d *Dashboard) Delete(ctx context.Context, id int64) error {
	if err := d.remote.Delete(ctx, id); err != nil {
		d.log.Error().Err(err).Str("op", "delete").Int64("id", id).Msg("Failed to delete food")
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.items[:0:0]
	for _, f := range d.items {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	d.items = kept
	return nil
}

// ToggleAddModal opens or closes the add modal.
func (d *Dashboard) ToggleAddModal() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addModalOpen = !d.addModalOpen
}

// ToggleEditModal opens or closes the edit modal. Closing it clears the
// selection.
func (d *Dashboard) ToggleEditModal() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.editModalOpen = !d.editModalOpen
	if !d.editModalOpen {
		d.editing = nil
	}
}

// SelectForEdit makes f the food being edited and opens the edit modal.
// f is used as given; nothing is fetched.
func (d *Dashboard) SelectForEdit(f model.Food) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.editing = &f
	d.editModalOpen = true
}

// Items returns a copy of the list.
func (d *Dashboard) Items() []model.Food {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]model.Food(nil), d.items...)
}

// Find returns the listed food with the given ID.
func (d *Dashboard) Find(id int64) (model.Food, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i := d.indexOf(id); i >= 0 {
		return d.items[i], true
	}
	return model.Food{}, false
}

// Editing returns the food being edited, if any.
func (d *Dashboard) Editing() (model.Food, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.editing == nil {
		return model.Food{}, false
	}
	return *d.editing, true
}

// AddModalOpen reports whether the create modal is shown.
func (d *Dashboard) AddModalOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addModalOpen
}

// EditModalOpen reports whether the edit modal is shown.
func (d *Dashboard) EditModalOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.editModalOpen
}

// Loaded reports whether Load has succeeded.
func (d *Dashboard) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.loadedAt.IsZero()
}

// indexOf must be called with mu held.
func (d *Dashboard) indexOf(id int64) int {
	for i, f := range d.items {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// replace swaps the entry with the given ID for f. A missing entry (deleted
// while the request was in flight) is not re-added. Must be called with mu held.
func (d *Dashboard) replace(id int64, f model.Food) {
	if i := d.indexOf(id); i >= 0 {
		d.items[i] = f
	}
}

// dedupe keeps the first occurrence of each ID.
func dedupe(foods []model.Food) []model.Food {
	seen := make(map[int64]bool, len(foods))
	out := make([]model.Food, 0, len(foods))
	for _, f := range foods {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		out = append(out, f)
	}
	return out
}
