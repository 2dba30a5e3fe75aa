package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bryan-buckman/gorestaurant/internal/api"
	"github.com/bryan-buckman/gorestaurant/internal/client"
	"github.com/bryan-buckman/gorestaurant/internal/dashboard"
	"github.com/bryan-buckman/gorestaurant/internal/database"
	"github.com/bryan-buckman/gorestaurant/internal/model"
)

type fixture struct {
	db   *database.DB
	api  *httptest.Server
	dash *dashboard.Dashboard
	ui   *Server
}

// newFixture wires the UI to a real /foods API over SQLite.
func newFixture(t *testing.T, seed ...model.Food) *fixture {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "ui.db"))
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.ImportFoods(seed); err != nil {
		t.Fatalf("ImportFoods: %v", err)
	}

	apiSrv := httptest.NewServer(api.New(db, zerolog.Nop()))
	t.Cleanup(apiSrv.Close)

	dash := dashboard.New(client.New(apiSrv.URL), zerolog.Nop())
	ui, err := New(dash, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ui.Mount(context.Background())
	return &fixture{db: db, api: apiSrv, dash: dash, ui: ui}
}

func (f *fixture) post(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.ui.ServeHTTP(w, r)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("POST %s = %d, want 303 (%s)", path, w.Code, w.Body.String())
	}
	return w
}

func (f *fixture) home(t *testing.T) string {
	t.Helper()
	return f.get(t, "/")
}

// follow renders the page a form post redirected to.
func (f *fixture) follow(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return f.get(t, w.Header().Get("Location"))
}

func (f *fixture) get(t *testing.T, target string) string {
	t.Helper()
	w := httptest.NewRecorder()
	f.ui.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s = %d", target, w.Code)
	}
	return w.Body.String()
}

var seedFoods = []model.Food{
	{ID: 1, Name: "Ao molho", Image: "a.png", Price: "19.90", Description: "Macarrão ao molho branco", Available: true},
	{ID: 2, Name: "Veggie", Image: "v.png", Price: "21.90", Description: "Macarrão com pimentão", Available: true},
}

func TestHomeRendersLoadedMenu(t *testing.T) {
	f := newFixture(t, seedFoods...)

	page := f.home(t)
	for _, want := range []string{"Ao molho", "Veggie", "R$ 19,90", `data-testid="food-2"`} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(page, "<dialog") {
		t.Error("a modal is open on first render")
	}
}

func TestAddFoodFlow(t *testing.T) {
	f := newFixture(t, seedFoods...)

	f.post(t, "/modal/add", nil)
	if !strings.Contains(f.home(t), `data-testid="add-food-button"`) {
		t.Fatal("add modal not rendered after toggle")
	}

	f.post(t, "/foods", url.Values{
		"name":        {"A la Camarón"},
		"image":       {"c.png"},
		"price":       {"25.90"},
		"description": {"Macarrão com vegetais"},
	})
	if f.dash.AddModalOpen() {
		t.Error("add modal still open after a successful submit")
	}

	items := f.dash.Items()
	if len(items) != 3 || items[2].Name != "A la Camarón" || !items[2].Available || items[2].ID != 3 {
		t.Fatalf("Items() = %+v", items)
	}
	stored, err := f.db.GetFood(3)
	if err != nil || stored.Name != "A la Camarón" {
		t.Errorf("stored = %+v, %v", stored, err)
	}
}

func TestInvalidFormShowsFlash(t *testing.T) {
	f := newFixture(t, seedFoods...)

	w := f.post(t, "/foods", url.Values{"name": {""}, "price": {"1"}})
	if len(f.dash.Items()) != 2 {
		t.Errorf("invalid form changed items: %+v", f.dash.Items())
	}
	if !strings.Contains(f.follow(t, w), `class="flash"`) {
		t.Error("no flash after invalid form")
	}
	if strings.Contains(f.home(t), `class="flash"`) {
		t.Error("flash shown on a plain reload")
	}
}

func TestEditFoodFlow(t *testing.T) {
	f := newFixture(t, seedFoods...)

	f.post(t, "/foods/2/edit", nil)
	if !strings.Contains(f.home(t), `value="Veggie"`) {
		t.Fatal("edit modal not prefilled")
	}

	f.post(t, "/foods/update", url.Values{
		"name":        {"Veggie 2"},
		"image":       {"v.png"},
		"price":       {"22.50"},
		"description": {"Novo"},
	})
	if f.dash.EditModalOpen() {
		t.Error("edit modal still open after a successful submit")
	}
	if _, ok := f.dash.Editing(); ok {
		t.Error("selection kept after the edit modal closed")
	}

	items := f.dash.Items()
	if items[0] != seedFoods[0] {
		t.Errorf("untouched entry changed: %+v", items[0])
	}
	if items[1].Name != "Veggie 2" || items[1].Price != "22.50" || !items[1].Available {
		t.Errorf("edited entry = %+v", items[1])
	}
}

func TestUpdateWithoutSelectionShowsFlash(t *testing.T) {
	f := newFixture(t, seedFoods...)

	w := f.post(t, "/foods/update", url.Values{"name": {"x"}, "price": {"1"}})
	if !strings.Contains(f.follow(t, w), dashboard.ErrNoFoodSelected.Error()) {
		t.Error("missing selection error not surfaced")
	}
}

func TestDeleteAndAvailability(t *testing.T) {
	f := newFixture(t, seedFoods...)

	f.post(t, "/foods/1/availability", url.Values{"available": {"false"}})
	if got, _ := f.dash.Find(1); got.Available {
		t.Errorf("food 1 still available: %+v", got)
	}

	f.post(t, "/foods/2/delete", nil)
	items := f.dash.Items()
	if len(items) != 1 || items[0].ID != 1 {
		t.Errorf("Items() after delete = %+v", items)
	}
	if _, err := f.db.GetFood(2); err == nil {
		t.Error("food 2 still stored")
	}
}

func TestRemoteFailureKeepsListAndFlashes(t *testing.T) {
	f := newFixture(t, seedFoods...)
	f.api.Close()

	w := f.post(t, "/foods/1/delete", nil)
	if len(f.dash.Items()) != 2 {
		t.Errorf("failed delete changed items: %+v", f.dash.Items())
	}
	if !strings.Contains(f.follow(t, w), "Could not delete") {
		t.Error("failure not surfaced")
	}
}

func TestFlashReachesOnlyThePostingClient(t *testing.T) {
	f := newFixture(t, seedFoods...)

	// One client submits a bad form; another loads the page before the
	// first follows its redirect.
	w := f.post(t, "/foods", url.Values{"name": {"  "}, "price": {"1"}})
	if page := f.home(t); strings.Contains(page, `class="flash"`) {
		t.Error("another client saw the banner")
	}
	if !strings.Contains(f.follow(t, w), "name is required") {
		t.Errorf("posting client lost its banner (Location %q)", w.Header().Get("Location"))
	}

	// A successful post redirects without a banner.
	w = f.post(t, "/foods/1/availability", url.Values{"available": {"false"}})
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

func TestLoadFailureShownUntilLoaded(t *testing.T) {
	apiSrv := httptest.NewServer(http.NotFoundHandler())
	apiSrv.Close()

	dash := dashboard.New(client.New(apiSrv.URL), zerolog.Nop())
	ui, err := New(dash, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ui.Mount(context.Background())

	f := &fixture{dash: dash, ui: ui}
	for i := 0; i < 2; i++ {
		if !strings.Contains(f.home(t), "Could not load the menu") {
			t.Fatalf("render %d: load failure not shown", i)
		}
	}
}

func TestStateEndpoint(t *testing.T) {
	f := newFixture(t, seedFoods...)
	f.post(t, "/modal/add", nil)

	w := httptest.NewRecorder()
	f.ui.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	var v dashboard.View
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if !v.AddModal.Open || v.EditModal.Open || len(v.Foods.Items) != 2 {
		t.Errorf("state = %+v", v)
	}
}
