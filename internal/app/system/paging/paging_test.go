package paging

import (
	"net/http/httptest"
	"reflect"
	"testing"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type row struct {
	key string
	id  primitive.ObjectID
}

func rowKey(r row) string            { return r.key }
func rowID(r row) primitive.ObjectID { return r.id }

func keys(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.key
	}
	return out
}

func makeRows(ks ...string) []row {
	out := make([]row, len(ks))
	for i, k := range ks {
		out[i] = row{key: k, id: primitive.NewObjectID()}
	}
	return out
}

func TestNew(t *testing.T) {
	cur := wafflemongo.EncodeCursor("soup", primitive.NewObjectID())

	tests := []struct {
		name       string
		size       int
		before     string
		after      string
		wantSize   int
		wantBack   bool
		wantCursor bool
	}{
		{"first page", 0, "", "", DefaultSize, false, false},
		{"after cursor", 10, "", cur, 10, false, true},
		{"before cursor", 10, cur, "", 10, true, true},
		{"before wins", 10, cur, cur, 10, true, true},
		{"garbage cursor starts over", 10, "%%%", "", 10, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := New("title_ci", tt.size, tt.before, tt.after)
			if k.Size != tt.wantSize {
				t.Errorf("Size = %d, want %d", k.Size, tt.wantSize)
			}
			if k.Backward() != tt.wantBack {
				t.Errorf("Backward = %v, want %v", k.Backward(), tt.wantBack)
			}
			if (k.cursor != nil) != tt.wantCursor {
				t.Errorf("cursor set = %v, want %v", k.cursor != nil, tt.wantCursor)
			}
		})
	}
}

func TestFromRequest(t *testing.T) {
	cur := wafflemongo.EncodeCursor("soup", primitive.NewObjectID())
	r := httptest.NewRequest("GET", "/recipes?after="+cur, nil)
	k := FromRequest(r, "title_ci", 5)
	if k.Backward() || k.cursor == nil || k.cursor.CI != "soup" {
		t.Errorf("FromRequest = %+v", k)
	}
}

func TestFilter(t *testing.T) {
	base := bson.M{"category": "lunch"}

	if got := New("title_ci", 5, "", "").Filter(base); !reflect.DeepEqual(got, base) {
		t.Errorf("no cursor: got %v, want base", got)
	}

	cur := wafflemongo.EncodeCursor("soup", primitive.NewObjectID())
	got := New("title_ci", 5, "", cur).Filter(base)
	and, ok := got["$and"].(bson.A)
	if !ok || len(and) != 2 || !reflect.DeepEqual(and[0], base) {
		t.Errorf("cursor: got %v, want $and of base and window", got)
	}
	if len(base) != 1 {
		t.Error("base filter was modified")
	}

	if got := New("title_ci", 5, "", cur).Filter(bson.M{}); got["$and"] != nil {
		t.Errorf("empty base should yield the bare window, got %v", got)
	}
}

func TestFindOptions(t *testing.T) {
	cur := wafflemongo.EncodeCursor("soup", primitive.NewObjectID())

	fwd := New("title_ci", 5, "", "").FindOptions()
	if *fwd.Limit != 6 {
		t.Errorf("limit = %d, want 6", *fwd.Limit)
	}
	if want := (bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}}); !reflect.DeepEqual(fwd.Sort, want) {
		t.Errorf("forward sort = %v", fwd.Sort)
	}

	back := New("title_ci", 5, cur, "").FindOptions()
	if want := (bson.D{{Key: "title_ci", Value: -1}, {Key: "_id", Value: -1}}); !reflect.DeepEqual(back.Sort, want) {
		t.Errorf("backward sort = %v", back.Sort)
	}
}

func TestFinish(t *testing.T) {
	cur := wafflemongo.EncodeCursor("m", primitive.NewObjectID())

	tests := []struct {
		name     string
		k        Keyset
		rows     []string
		want     []string
		wantPrev bool
		wantNext bool
	}{
		{"first page short", New("k", 3, "", ""), []string{"a", "b"}, []string{"a", "b"}, false, false},
		{"first page full with more", New("k", 3, "", ""), []string{"a", "b", "c", "d"}, []string{"a", "b", "c"}, false, true},
		{"after cursor last page", New("k", 3, "", cur), []string{"n", "o"}, []string{"n", "o"}, true, false},
		{"before cursor with more", New("k", 3, cur, ""), []string{"l", "k", "j", "i"}, []string{"j", "k", "l"}, true, true},
		{"before cursor reaches start", New("k", 3, cur, ""), []string{"b", "a"}, []string{"a", "b"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := makeRows(tt.rows...)
			p := Finish(tt.k, &rows, rowKey, rowID)
			if got := keys(rows); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("rows = %v, want %v", got, tt.want)
			}
			if p.HasPrev != tt.wantPrev || p.HasNext != tt.wantNext {
				t.Errorf("HasPrev/HasNext = %v/%v, want %v/%v", p.HasPrev, p.HasNext, tt.wantPrev, tt.wantNext)
			}
			if (p.PrevCursor != "") != tt.wantPrev || (p.NextCursor != "") != tt.wantNext {
				t.Errorf("cursors = %q/%q", p.PrevCursor, p.NextCursor)
			}
			if p.NextCursor != "" {
				c, ok := wafflemongo.DecodeCursor(p.NextCursor)
				if !ok || c.CI != rows[len(rows)-1].key || c.ID != rows[len(rows)-1].id {
					t.Errorf("next cursor does not point at last row: %+v", c)
				}
			}
		})
	}
}
