package post

import (
	"errors"
	"fmt"
	"iter"
	"sort"
)

// ErrDuplicateIdentifier reports two content files with the same
// identifier. Fatal for the whole run: neighbor lookup and pagination
// need a unique ordering key.
var ErrDuplicateIdentifier = errors.New("duplicate post identifier")

// ErrDuplicateSlug reports two distinct posts sharing one slug. Fatal
// for the whole run: both would write the same permalink and the later
// page would silently overwrite the earlier one.
var ErrDuplicateSlug = errors.New("duplicate post slug")

// Collection is the immutable, site-wide ordering of all posts, built
// once per generation run. Posts are held newest first; equal dates are
// broken by identifier so every run orders the same way.
type Collection struct {
	posts   []*Post
	byIdent map[string]int
}

// NewCollection validates identifier uniqueness and sorts the posts
// into the canonical newest-first order.
func NewCollection(posts []*Post) (*Collection, error) {
	sorted := make([]*Post, len(posts))
	copy(sorted, posts)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].Identifier < sorted[j].Identifier
	})

	byIdent := make(map[string]int, len(sorted))
	bySlug := make(map[string]string, len(sorted))
	for i, p := range sorted {
		if _, ok := byIdent[p.Identifier]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateIdentifier, p.Identifier)
		}
		byIdent[p.Identifier] = i

		if other, ok := bySlug[p.Slug]; ok {
			return nil, fmt.Errorf("%w: %q used by %q and %q", ErrDuplicateSlug, p.Slug, other, p.Identifier)
		}
		bySlug[p.Slug] = p.Identifier
	}

	return &Collection{posts: sorted, byIdent: byIdent}, nil
}

// Len returns the number of posts.
func (c *Collection) Len() int { return len(c.posts) }

// All returns the full ordering, newest first. Callers must not modify
// the returned slice.
func (c *Collection) All() []*Post { return c.posts }

// Neighbors returns the chronologically older and newer posts relative
// to p, nil at the boundaries. An unknown post has no neighbors.
func (c *Collection) Neighbors(p *Post) (older, newer *Post) {
	i, ok := c.byIdent[p.Identifier]
	if !ok {
		return nil, nil
	}
	if i+1 < len(c.posts) {
		older = c.posts[i+1]
	}
	if i > 0 {
		newer = c.posts[i-1]
	}
	return older, newer
}

// Page is one fixed-size window over All. Number is 1-based; Prev and
// Next are the neighboring page numbers, 0 at the first and last page.
type Page struct {
	Number int
	Posts  []*Post
	Prev   int
	Next   int
}

// Paginate returns a lazy, restartable sequence of pages of the given
// size over All. The final page may be shorter. A non-positive size
// yields a single page with everything.
func (c *Collection) Paginate(pageSize int) iter.Seq[Page] {
	if pageSize <= 0 {
		pageSize = len(c.posts)
	}
	return func(yield func(Page) bool) {
		if len(c.posts) == 0 {
			return
		}
		total := (len(c.posts) + pageSize - 1) / pageSize
		for n := 1; n <= total; n++ {
			start := (n - 1) * pageSize
			end := min(start+pageSize, len(c.posts))

			page := Page{Number: n, Posts: c.posts[start:end]}
			if n > 1 {
				page.Prev = n - 1
			}
			if n < total {
				page.Next = n + 1
			}
			if !yield(page) {
				return
			}
		}
	}
}

// Related returns up to max posts sharing at least one keyword or tag
// token with p, ordered by shared-token count, then recency, then
// identifier. No matches is an empty result, not an error.
func (c *Collection) Related(p *Post, max int) []*Post {
	if max <= 0 {
		return nil
	}
	tokens := p.Tokens()
	if len(tokens) == 0 {
		return nil
	}

	type scored struct {
		post   *Post
		shared int
	}
	var candidates []scored
	for _, other := range c.posts {
		if other.Identifier == p.Identifier {
			continue
		}
		shared := 0
		for token := range other.Tokens() {
			if _, ok := tokens[token]; ok {
				shared++
			}
		}
		if shared > 0 {
			candidates = append(candidates, scored{post: other, shared: shared})
		}
	}

	// c.posts is already recency-then-identifier ordered, so a stable
	// sort on the score alone keeps the remaining tie-breaks intact.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].shared > candidates[j].shared
	})

	related := make([]*Post, 0, min(max, len(candidates)))
	for _, cand := range candidates {
		if len(related) == max {
			break
		}
		related = append(related, cand.post)
	}
	return related
}
