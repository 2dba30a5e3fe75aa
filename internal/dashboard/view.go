package dashboard

import (
	"time"

	"github.com/bryan-buckman/gorestaurant/internal/model"
)

// HeaderProps feeds the page header.
type HeaderProps struct {
	// OpenAddModal is the action that opens the create modal.
	OpenAddModal string `json:"open_add_modal"`
}

// FoodListProps feeds the list renderer. Per-item delete, edit and
// availability actions are keyed by food ID.
type FoodListProps struct {
	Items []model.Food `json:"items"`
}

// AddModalProps feeds the create modal.
type AddModalProps struct {
	Open bool `json:"open"`
}

// EditModalProps feeds the edit modal. Editing is nil when no food is
// selected.
type EditModalProps struct {
	Open    bool        `json:"open"`
	Editing *model.Food `json:"editing"`
}

// View is a consistent snapshot of the dashboard for rendering.
type View struct {
	Header    HeaderProps    `json:"header"`
	Foods     FoodListProps  `json:"foods"`
	AddModal  AddModalProps  `json:"add_modal"`
	EditModal EditModalProps `json:"edit_modal"`
	LoadedAt  time.Time      `json:"loaded_at"`
}

// OpenAddModalAction is the route the header posts to.
const OpenAddModalAction = "/modal/add"

// View snapshots the current state.
func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := View{
		Header:    HeaderProps{OpenAddModal: OpenAddModalAction},
		Foods:     FoodListProps{Items: append([]model.Food{}, d.items...)},
		AddModal:  AddModalProps{Open: d.addModalOpen},
		EditModal: EditModalProps{Open: d.editModalOpen},
		LoadedAt:  d.loadedAt,
	}
	if d.editing != nil {
		f := *d.editing
		v.EditModal.Editing = &f
	}
	return v
}
