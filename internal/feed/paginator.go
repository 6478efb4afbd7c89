package feed

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/yatube/yatube/internal/models"
)

// PageSize is the number of posts on every listing page.
const PageSize = 10

// Page is one clamped slice of an ordered post listing.
type Page struct {
	Number      int
	NumPages    int
	Count       int64
	HasNext     bool
	HasPrevious bool
	Posts       []*models.Post
}

// Source is an already filtered and ordered post sequence.
type Source interface {
	Count(ctx context.Context) (int64, error)
	Slice(ctx context.Context, offset, limit int) ([]*models.Post, error)
}

// ParsePage reads a page query parameter. Anything that is not a number is page 1.
// Numbers too large for an int saturate so that Clamp still lands on the last page.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		return math.MaxInt
	}
	if err != nil {
		return 1
	}
	return n
}

// Clamp resolves a requested page against count items split into pages of size.
// Pages below 1 become 1 and pages past the end become the last page. An empty
// sequence still has one (empty) page.
func Clamp(requested int, count int64, size int) (number, numPages int) {
	numPages = int((count + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}
	number = requested
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}
	return number, numPages
}

// Paginate returns page number requested of src.
func Paginate(ctx context.Context, src Source, requested int) (*Page, error) {
	count, err := src.Count(ctx)
	if err != nil {
		return nil, err
	}

	number, numPages := Clamp(requested, count, PageSize)
	page := &Page{
		Number:      number,
		NumPages:    numPages,
		Count:       count,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
		Posts:       []*models.Post{},
	}
	if count == 0 {
		return page, nil
	}

	posts, err := src.Slice(ctx, (number-1)*PageSize, PageSize)
	if err != nil {
		return nil, err
	}
	page.Posts = posts
	return page, nil
}
