package grid

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/gridui/pkg/errors"
)

func TestResultBind(t *testing.T) {
	shared := NewMeasured("logo", 40, 40)
	g := NewGrid(480, 400,
		NewRow(shared, NewVirtual("group", NewRow(NewMeasured("icon", 16, 16), shared))),
		Center(NewMeasured("title", 200, 30)),
	)
	res, err := New().Layout(g)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Result
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := back.Placement(shared); ok {
		t.Fatal("decoded result should not resolve blocks before Bind")
	}

	if err := back.Bind(g); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	for _, p := range res.Placements {
		got, ok := back.Placement(p.Block)
		if !ok {
			t.Errorf("%s: not found after Bind", p.ID)
			continue
		}
		if got.Span != p.Span || got.Block != p.Block {
			t.Errorf("%s: span = %v, want %v", p.ID, got.Span, p.Span)
		}
	}
}

func TestResultBindMismatch(t *testing.T) {
	g := NewGrid(480, 400, NewRow(NewMeasured("a", 10, 10), NewMeasured("b", 10, 10)))
	res, err := New().Layout(g)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	tests := []struct {
		name string
		grid *Grid
	}{
		{"nil", nil},
		{"fewer blocks", NewGrid(480, 400, NewRow(NewMeasured("a", 10, 10)))},
		{"other ids", NewGrid(480, 400, NewRow(NewMeasured("a", 10, 10), NewMeasured("c", 10, 10)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := *res
			r.Placements = append([]Placement(nil), res.Placements...)
			if err := r.Bind(tt.grid); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Bind() error = %v, want %s", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}
