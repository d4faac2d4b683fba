package content

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/models"
	"tips-content-service/internal/utils"
)

// snippetContextRunes is the number of characters of surrounding body text
// returned before and after a search match.
const snippetContextRunes = 80

type DocumentSearchMatchMapper struct {
	*environment.Env
}

func (m DocumentSearchMatchMapper) mapToDocumentSearchPage(payload DocumentSearchPayload, pageSize, matchCount int, searchMatches []models.DocumentContent) (Page[DocumentSearchMatch], error) {
	if searchMatches == nil {
		return Page[DocumentSearchMatch]{}, fmt.Errorf("search matches must not be nil")
	}

	matches := make([]DocumentSearchMatch, 0, len(searchMatches))
	for _, v := range searchMatches {
		label := v.Meta.Title
		if len(label) == 0 {
			segments := permalinkSegments(v.Meta.Permalink)
			if len(segments) > 0 {
				label = utils.TitleFromSlug(segments[len(segments)-1])
			}
		}

		before, matchingText, after := snippetAround(v.Body, payload.Term)

		match := DocumentSearchMatch{
			Label:           label,
			Href:            v.Meta.Permalink,
			Category:        v.Meta.Category,
			MatchingText:    matchingText,
			TextBeforeMatch: before,
			TextAfterMatch:  after,
		}

		matches = append(matches, match)
	}

	totalPages := utils.CalculateTotalPages(matchCount, pageSize)

	orders := make([]Order, 0)
	orders = append(orders, Order{Property: "similarity", Direction: DESC})
	payload.Pageable.Sort.Orders = orders

	page := Page[DocumentSearchMatch]{
		Content:       matches,
		Pageable:      payload.Pageable,
		TotalElements: matchCount,
		TotalPages:    totalPages,
	}

	return page, nil
}

// snippetAround locates the first occurrence of term in body and returns the
// surrounding text. The candidate queries match case-sensitively, so a raw
// index lookup finds the occurrence; if the term is absent anyway, the term
// itself is returned without context.
func snippetAround(body, term string) (before, match, after string) {
	idx := strings.Index(body, term)
	if idx < 0 {
		return "", term, ""
	}

	match = body[idx : idx+len(term)]
	before = trailingRunes(body[:idx], snippetContextRunes)
	after = leadingRunes(body[idx+len(term):], snippetContextRunes)

	return before, match, after
}

func trailingRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[len(runes)-n:])
}

func leadingRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}

func TrigramSorensenDiceSimilarity(a, b string) float64 {

	aTrigrams := TransformToUniqueTrigrams(a)
	bTrigrams := TransformToUniqueTrigrams(b)

	aCount, bCount := len(aTrigrams), len(bTrigrams)
	aTrigramsByTrigram := make(map[string]struct{}, len(aTrigrams))
	for _, v := range aTrigrams {
		aTrigramsByTrigram[v] = struct{}{}
	}

	var intersectionCount int
	for _, bT := range bTrigrams {
		if _, ok := aTrigramsByTrigram[bT]; !ok {
			continue
		}
		intersectionCount++
	}

	// Sorensen-Dice coefficient
	//   SDC = 2 * |A ∩ B| / (|A| + |B|)
	return 2 * float64(intersectionCount) / float64(aCount+bCount)
}

func TransformToUniqueTrigrams(a string) []string {
	if len(a) == 0 {
		return []string{}
	}

	// split on non-word characters
	re := regexp.MustCompile(`\W+`)
	words := re.Split(a, -1)

	var trigramCount int
	for _, word := range words {
		// 1 there's always one trigram because of padding
		// 2 aside from the initial trigram, we need to shift left n times
		//   with n equal to the count of character in the string (=> len(a))
		trigramCount += 1 + len(word)
	}

	// to minimize the memory footprint, we use struct as value
	uniqueTrigrams := make(map[string]struct{}, trigramCount)

	for _, word := range words {
		word = strings.ToLower(word)
		padded := "  " + word + " "

		for i := 0; i < 1+len(word); i++ {
			t := padded[:3]
			uniqueTrigrams[t] = struct{}{}
			padded = padded[1:]
		}
	}

	trigrams := make([]string, 0, len(uniqueTrigrams))
	for t := range uniqueTrigrams {
		trigrams = append(trigrams, t)
	}

	// the following quicksort runs in n*lg(n) on average
	// because we can assume that the input is randomly ordered (=not sorted)
	slices.Sort(trigrams)

	return trigrams
}
