package pipeline

import (
	"context"
	"fmt"

	"gatebank/internal/canon"
	"gatebank/internal/domain"
	"gatebank/internal/scrape"
)

// Fetcher abstracts the rate-limited HTTP client so harvest tests can
// run on canned pages.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// maxListingPages caps pagination per tag; a sitting has well under
// forty listing pages.
const maxListingPages = 40

// Harvest crawls the tag listings for the given sittings and returns
// the raw questions found. For each sitting the tag candidates are
// probed in order and the first tag that yields questions wins; the
// winning tag is appended to every question so later stages can
// re-derive the exam.
func Harvest(ctx context.Context, fetcher Fetcher, base string, sittings []canon.YearSet) ([]domain.RawQuestion, map[string]int, error) {
	var harvested []domain.RawQuestion
	counts := make(map[string]int)

	for _, sitting := range sittings {
		questions, tag, err := harvestSitting(ctx, fetcher, base, sitting)
		if err != nil {
			return nil, nil, fmt.Errorf("harvest %d set %d: %w", sitting.Year, sitting.Set, err)
		}
		if tag == "" {
			continue
		}
		counts[tag] = len(questions)
		harvested = append(harvested, questions...)
	}
	return harvested, counts, nil
}

func harvestSitting(ctx context.Context, fetcher Fetcher, base string, sitting canon.YearSet) ([]domain.RawQuestion, string, error) {
	for _, tag := range scrape.TagCandidates(sitting.Year, sitting.Set) {
		questions, err := harvestTag(ctx, fetcher, base, tag)
		if err != nil {
			return nil, "", err
		}
		if len(questions) > 0 {
			return questions, tag, nil
		}
	}
	return nil, "", nil
}

func harvestTag(ctx context.Context, fetcher Fetcher, base, tag string) ([]domain.RawQuestion, error) {
	var out []domain.RawQuestion
	for page := 1; page <= maxListingPages; page++ {
		body, err := fetcher.Fetch(ctx, scrape.ListingURL(base, tag, page))
		if err != nil {
			return nil, err
		}
		listing, err := scrape.ParseListing(body)
		if err != nil {
			return nil, err
		}
		for _, q := range listing.Questions {
			q.Year = tag
			if !hasTag(q.Tags, tag) {
				q.Tags = append(q.Tags, tag)
			}
			out = append(out, q)
		}
		if !listing.HasNext {
			break
		}
	}
	return out, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
