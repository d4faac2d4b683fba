package utils

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"math"
	"strings"
	"unicode"
)

// SliceToMap creates a map from a slice, using the provided key function to determine the map keys.
// If the key function returns the same value for two or more elements, the last element wins.
func SliceToMap[T any, K comparable](s []T, key func(T) K) map[K]T {
	m := make(map[K]T)

	for _, v := range s {
		m[key(v)] = v
	}

	return m
}

// ToSnakeCase converts a CamelCase string to snake_case.
//
// Acronyms stay together:
//
//	ToSnakeCase("CamelCase")   => "camel_case"
//	ToSnakeCase("HTTPRequest") => "http_request"
//	ToSnakeCase("UserID")      => "user_id"
func ToSnakeCase(str string) string {
	var result []rune
	for i, r := range str {
		if unicode.IsUpper(r) {
			// underscore before an upper rune that starts a new word,
			// i.e. the previous rune is lower or the next one is (end of an acronym)
			if i > 0 && (unicode.IsLower(rune(str[i-1])) || (i+1 < len(str) && unicode.IsLower(rune(str[i+1])))) {
				result = append(result, '_')
			}
			result = append(result, unicode.ToLower(r))
			continue
		}

		result = append(result, r)
	}

	return string(result)
}

// TitleFromSlug derives a human readable label from a slug,
// e.g. "new-features" becomes "New Features".
func TitleFromSlug(slug string) string {
	label := strings.ReplaceAll(slug, "-", " ")
	label = strings.ReplaceAll(label, "_", " ")

	return cases.Title(language.English).String(label)
}

// CalculateTotalPages computes the number of pages needed to display matchCount
// elements at pageSize elements per page. A partially filled page counts as a full one.
//
// A pageSize of zero or less yields 0 to avoid a division by zero.
func CalculateTotalPages(matchCount, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}

	exactPageSize := float64(matchCount) / float64(pageSize)
	return int(math.Ceil(exactPageSize))
}
