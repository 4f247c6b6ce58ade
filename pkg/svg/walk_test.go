package svg

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/xkcdify/pkg/errors"
)

const treeDoc = `<svg id="root">
  <g id="a">
    <path id="a1"/>
    <!-- skipped -->
    <g id="a2"><path id="a2x"/></g>
  </g>
  <path id="b"/>
  <text id="c"><tspan id="c1"/></text>
</svg>`

func ids(seq func(func(*Element) bool)) []string {
	var out []string
	for e := range seq {
		out = append(out, e.ID())
	}
	return out
}

func TestFindRecursivePreOrder(t *testing.T) {
	doc := mustParse(t, treeDoc)

	tests := []struct {
		name string
		pred func(*Element) bool
		want []string
	}{
		{"all", All, []string{"root", "a", "a1", "a2", "a2x", "b", "c", "c1"}},
		{"paths", IsPath, []string{"a1", "a2x", "b"}},
		{"groups", func(e *Element) bool { return e.Kind == KindGroup }, []string{"a", "a2"}},
		{"none", func(*Element) bool { return false }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FindRecursive([]*Element{doc.Root}, tt.pred))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindRecursiveSkipsNonElements(t *testing.T) {
	doc := mustParse(t, treeDoc)
	FindRecursive([]*Element{doc.Root}, func(e *Element) bool {
		if !e.IsElement() {
			t.Errorf("predicate saw a %v node", e.Kind)
		}
		return true
	})(func(*Element) bool { return true })
}

func TestFindRecursiveMultipleRoots(t *testing.T) {
	doc := mustParse(t, treeDoc)
	roots := []*Element{doc.ByID("c"), doc.ByID("a2")}
	got := ids(FindRecursive(roots, All))
	want := []string{"c", "c1", "a2", "a2x"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFindRecursiveIsLazy(t *testing.T) {
	doc := mustParse(t, treeDoc)
	calls := 0
	pred := func(*Element) bool {
		calls++
		return true
	}

	n := 0
	for range FindRecursive([]*Element{doc.Root}, pred) {
		n++
		if n == 2 {
			break
		}
	}
	if calls != 2 {
		t.Errorf("predicate called %d times after breaking at the second match, want 2", calls)
	}
}

func TestFindRecursiveReusable(t *testing.T) {
	doc := mustParse(t, treeDoc)
	seq := FindRecursive([]*Element{doc.Root}, IsPath)
	first, second := ids(seq), ids(seq)
	if !slices.Equal(first, second) {
		t.Errorf("second range gave %v, first gave %v", second, first)
	}
}

func TestSelection(t *testing.T) {
	doc := mustParse(t, treeDoc)

	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{"whole document", nil, []string{"root"}},
		{"given order", []string{"b", "a1"}, []string{"b", "a1"}},
		{"duplicates", []string{"b", "b"}, []string{"b"}},
		{"nested dropped", []string{"a2x", "a", "b"}, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := doc.Selection(tt.ids)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, e := range sel {
				got = append(got, e.ID())
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectionErrors(t *testing.T) {
	doc := mustParse(t, treeDoc)

	tests := []struct {
		name string
		ids  []string
		code errors.Code
	}{
		{"missing", []string{"nope"}, errors.ErrCodeNotFound},
		{"blank", []string{""}, errors.ErrCodeInvalidConfig},
		{"whitespace", []string{"a b"}, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := doc.Selection(tt.ids)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}
