package tags

import (
	"math"
	"reflect"
	"testing"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		name      string
		a, b      []string
		want      float64
		wantUnion int
	}{
		{"both empty", nil, nil, 0, 0},
		{"one empty", []string{"music"}, nil, 0, 1},
		{"identical", []string{"music", "cuisine"}, []string{"Cuisine", " music "}, 1, 2},
		{"one third", []string{"music", "cuisine"}, []string{"music", "festival"}, 1.0 / 3, 3},
		{"disjoint", []string{"music"}, []string{"hiking"}, 0, 2},
		{"blank tags dropped", []string{"", "  "}, []string{""}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, union := Jaccard(NewSet(tt.a), NewSet(tt.b))
			if math.Abs(got-tt.want) > 1e-12 || union != tt.wantUnion {
				t.Errorf("Jaccard() = (%f, %d), want (%f, %d)", got, union, tt.want, tt.wantUnion)
			}
		})
	}
}

func TestIntersection_Sorted(t *testing.T) {
	got := Intersection(NewSet([]string{"b", "a", "c"}), NewSet([]string{"c", "a"}))
	if !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Intersection() = %v", got)
	}
}
