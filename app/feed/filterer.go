package feed

import (
	"fmt"
	"strings"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

var filterFields = map[string]bool{
	"title":       true,
	"description": true,
	"content":     true,
	"link":        true,
	"categories":  true,
}

// Filterer applies a feed's own include/exclude rules. These are per-source
// rules from the feed definition, separate from the global blocked keywords.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run marks excluded items and returns how many were excluded.
func (f *Filterer) Run(items []Item, feedConfig *Config) ([]Item, int) {
	if len(feedConfig.Filters) == 0 {
		return items, 0
	}

	excluded := 0
	marked := make([]Item, 0, len(items))
	for _, item := range items {
		item.IsFiltered, item.FilterReason = f.applyFilters(item, feedConfig.Filters)
		if item.IsFiltered {
			excluded++
		}
		marked = append(marked, item)
	}

	return marked, excluded
}

func (f *Filterer) applyFilters(item Item, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := fieldValue(item, filter.Field)

		for _, exclude := range filter.Excludes {
			if news.ContainsFold(value, exclude) {
				return true, fmt.Sprintf("excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) == 0 {
			continue
		}
		matched := false
		for _, include := range filter.Includes {
			if news.ContainsFold(value, include) {
				matched = true
				break
			}
		}
		if !matched {
			return true, fmt.Sprintf("excluded by %s filter: none of %v", filter.Field, filter.Includes)
		}
	}

	return false, ""
}

func fieldValue(item Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "content":
		return item.Content
	case "link":
		return item.Link
	case "categories":
		return strings.Join(item.Categories, " ")
	default:
		return ""
	}
}
