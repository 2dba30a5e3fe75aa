package menufile

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/bryan-buckman/gorestaurant/internal/model"
)

const serverJSON = `{
  "foods": [
    {
      "id": 1,
      "name": "Ao molho",
      "description": "Macarrão ao molho branco, fughi e cheiro verde das montanhas.",
      "price": "19.90",
      "available": true,
      "image": "https://example.com/food1.png"
    },
    {
      "id": 2,
      "name": "Veggie",
      "description": "Macarrão com pimentão, ervilha e ervas finas colhidas no himalaia.",
      "price": "21.90",
      "available": false,
      "image": "https://example.com/food2.png"
    }
  ]
}`

func TestParseDocument(t *testing.T) {
	foods, err := Parse(strings.NewReader(serverJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(foods) != 2 {
		t.Fatalf("Parse returned %d foods, want 2", len(foods))
	}
	if foods[0].ID != 1 || foods[0].Name != "Ao molho" || !foods[0].Available {
		t.Errorf("foods[0] = %+v", foods[0])
	}
	if foods[1].Available {
		t.Errorf("foods[1].Available = true, want false")
	}
}

func TestParseBareArrayDefaultsAvailable(t *testing.T) {
	foods, err := Parse(strings.NewReader(`[{"name": "Pasta", "price": "10"}]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(foods) != 1 || !foods[0].Available || foods[0].ID != 0 {
		t.Errorf("Parse = %+v", foods)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []string{
		`{"foods": [{"name": "", "price": "1"}]}`,
		`{"foods": [{"name": "x", "price": "cheap"}]}`,
		`{"foods": `,
	}
	for _, in := range tests {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("Parse(%q): want error", in)
		}
	}
	_, err := Parse(strings.NewReader(`[{"name": "", "price": "1"}]`))
	if !errors.Is(err, model.ErrInvalidFood) {
		t.Errorf("err = %v, want ErrInvalidFood", err)
	}
}

func TestExportParsesBack(t *testing.T) {
	in := []model.Food{
		{ID: 3, Name: "Tomato", Price: "9.50", Available: false},
		{ID: 4, Name: "Basil", Price: "1", Available: true},
	}
	data, err := Export(in)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte(`{`)) || !bytes.Contains(data, []byte(`"foods"`)) {
		t.Errorf("Export output not a foods document: %s", data)
	}
	out, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse(Export()): %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("Parse(Export()) = %+v, want %+v", out, in)
	}
}
