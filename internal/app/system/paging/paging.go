// internal/app/system/paging/paging.go
package paging

import (
	"net/http"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultSize is the number of rows in a page when the caller does not ask
// for a different size.
const DefaultSize = 50

// Page describes where a fetched page sits in the full listing.
type Page struct {
	HasPrev    bool   `json:"has_prev"`
	HasNext    bool   `json:"has_next"`
	PrevCursor string `json:"prev_cursor,omitempty"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Keyset pages through a collection sorted by (Field, _id). Field must hold
// a folded string so cursors compare the way the index sorts.
type Keyset struct {
	Field string
	Size  int

	backward bool
	cursor   *wafflemongo.Cursor
}

// FromRequest reads the "before" and "after" cursors from the query string.
// "before" wins when both are present. An undecodable cursor starts from the
// first page.
func FromRequest(r *http.Request, field string, size int) Keyset {
	return New(field, size, query.Get(r, "before"), query.Get(r, "after"))
}

// New builds a Keyset from raw cursor strings.
func New(field string, size int, before, after string) Keyset {
	if size <= 0 {
		size = DefaultSize
	}
	k := Keyset{Field: field, Size: size}
	if before != "" {
		if c, ok := wafflemongo.DecodeCursor(before); ok {
			k.cursor = &c
			k.backward = true
		}
	} else if after != "" {
		if c, ok := wafflemongo.DecodeCursor(after); ok {
			k.cursor = &c
		}
	}
	return k
}

// Backward reports whether the page is fetched in reverse order.
func (k Keyset) Backward() bool { return k.backward }

// Filter combines base with the cursor window. base is not modified.
func (k Keyset) Filter(base bson.M) bson.M {
	if k.cursor == nil {
		return base
	}
	dir := "gt"
	if k.backward {
		dir = "lt"
	}
	window := wafflemongo.KeysetWindow(k.Field, dir, k.cursor.CI, k.cursor.ID)
	if len(base) == 0 {
		return window
	}
	return bson.M{"$and": bson.A{base, window}}
}

// FindOptions sorts by (Field, _id) in the paging direction and fetches one
// row past the page to detect whether another page exists.
func (k Keyset) FindOptions() *options.FindOptions {
	order := 1
	if k.backward {
		order = -1
	}
	return options.Find().
		SetSort(bson.D{{Key: k.Field, Value: order}, {Key: "_id", Value: order}}).
		SetLimit(int64(k.Size + 1))
}

// Finish trims the look-ahead row, restores ascending order when paging
// backwards and builds the cursors for the neighbouring pages.
func Finish[T any](k Keyset, rows *[]T, key func(T) string, id func(T) primitive.ObjectID) Page {
	var p Page
	more := len(*rows) > k.Size
	if more {
		*rows = (*rows)[:k.Size]
	}
	if k.backward {
		reverse(*rows)
		p.HasPrev, p.HasNext = more, true
	} else {
		p.HasPrev, p.HasNext = k.cursor != nil, more
	}

	if n := len(*rows); n > 0 {
		first, last := (*rows)[0], (*rows)[n-1]
		if p.HasPrev {
			p.PrevCursor = wafflemongo.EncodeCursor(key(first), id(first))
		}
		if p.HasNext {
			p.NextCursor = wafflemongo.EncodeCursor(key(last), id(last))
		}
	}
	return p
}

func reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}
