package store

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// Store persists analyzed documents and answers the doc-set and
// range-count queries that faceting needs.
type Store interface {
	Close() error

	// Docs
	UpsertDoc(ctx context.Context, d Doc) error
	GetDoc(ctx context.Context, id int64) (Doc, error)
	GetDocByURL(ctx context.Context, url string) (Doc, bool, error)
	GetDocsByTokens(ctx context.Context, tokens []string, limit int) ([]Doc, error)

	// Faceting
	DocSet(ctx context.Context, f Filter) (*roaring.Bitmap, error)
	RangeCount(ctx context.Context, q RangeQuery) (int, error)
}

// PublishedField is the date field every document carries when it has a
// publication time.
const PublishedField = "published_at"

// Doc represents a stored document
type Doc struct {
	ID          int64
	URL         string
	Title       string
	PublishedAt time.Time
	Tokens      []string
	Fields      map[string]Field
}

// Number is the stored form of a facetable value. Integers, longs and
// dates (unix milliseconds) use I; floats and doubles use F.
type Number struct {
	I       int64
	F       float64
	IsFloat bool
}

// Int returns an integer Number.
func Int(v int64) Number { return Number{I: v} }

// Float returns a floating point Number.
func Float(v float64) Number { return Number{F: v, IsFloat: true} }

// Time returns the Number for a date value.
func Time(t time.Time) Number { return Number{I: t.UnixMilli()} }

// Float64 returns n as a float64.
func (n Number) Float64() float64 {
	if n.IsFloat {
		return n.F
	}
	return float64(n.I)
}

// Compare orders two numbers. Mixed kinds compare as float64.
func (n Number) Compare(o Number) int {
	if n.IsFloat || o.IsFloat {
		return cmp.Compare(n.Float64(), o.Float64())
	}
	return cmp.Compare(n.I, o.I)
}

func (n Number) String() string {
	if n.IsFloat {
		return fmt.Sprint(n.F)
	}
	return fmt.Sprint(n.I)
}

// Field is a facetable field value. Point values have Low == High;
// interval values span [Low, High].
type Field struct {
	Low  Number
	High Number
}

// Point returns a single-valued field.
func Point(n Number) Field { return Field{Low: n, High: n} }

// Interval returns a field covering [low, high].
func Interval(low, high Number) Field { return Field{Low: low, High: high} }

// RangeQuery counts documents whose field overlaps a range. A nil bound
// is open on that side. When Docs is set only those documents count.
type RangeQuery struct {
	Field        string
	Low          *Number
	High         *Number
	IncludeLower bool
	IncludeUpper bool
	Docs         *roaring.Bitmap
}

// Matches reports whether f overlaps the query range.
func (q RangeQuery) Matches(f Field) bool {
	if q.Low != nil {
		c := f.High.Compare(*q.Low)
		if c < 0 || (c == 0 && !q.IncludeLower) {
			return false
		}
	}
	if q.High != nil {
		c := f.Low.Compare(*q.High)
		if c > 0 || (c == 0 && !q.IncludeUpper) {
			return false
		}
	}
	return true
}

// Filter selects a document set: documents containing Token, or, when
// Range is set, documents whose field overlaps the range. Range.Docs is
// ignored.
type Filter struct {
	Token string
	Range *RangeQuery
}

// DocID converts a store id into a bitmap member.
func DocID(id int64) (uint32, error) {
	if id < 0 || id > int64(^uint32(0)) {
		return 0, fmt.Errorf("doc id %d out of bitmap range", id)
	}
	return uint32(id), nil
}
