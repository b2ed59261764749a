package feed

import (
	"strings"
	"testing"
)

func TestFiltererRun(t *testing.T) {
	items := []Item{
		{Title: "Rescue dog finds home", Description: "A happy ending"},
		{Title: "Sponsored: buy now", Description: "Advertisement"},
		{Title: "Garden grows", Description: "Community project", Categories: []string{"Local"}},
	}

	config := &Config{
		Filters: []ConfigFilter{
			{Field: "title", Excludes: []string{"SPONSORED"}},
			{Field: "description", Includes: []string{"happy", "community"}},
		},
	}

	marked, excluded := NewFilterer().Run(items, config)

	if excluded != 1 {
		t.Fatalf("Expected 1 excluded item, got %d", excluded)
	}
	if marked[0].IsFiltered || marked[2].IsFiltered {
		t.Error("Expected matching items to pass")
	}
	if !marked[1].IsFiltered || !strings.Contains(marked[1].FilterReason, "sponsored") && !strings.Contains(marked[1].FilterReason, "SPONSORED") {
		t.Errorf("Expected sponsored item excluded with reason, got %+v", marked[1])
	}
}

func TestFiltererIncludesRequired(t *testing.T) {
	items := []Item{{Title: "Stock update", Categories: []string{"Finance"}}}
	config := &Config{Filters: []ConfigFilter{{Field: "categories", Includes: []string{"science"}}}}

	marked, excluded := NewFilterer().Run(items, config)
	if excluded != 1 || !marked[0].IsFiltered {
		t.Error("Expected item without included category to be excluded")
	}
}

func TestFiltererNoFilters(t *testing.T) {
	items := []Item{{Title: "Anything"}}
	marked, excluded := NewFilterer().Run(items, &Config{})
	if excluded != 0 || len(marked) != 1 || marked[0].IsFiltered {
		t.Error("Expected items to pass unchanged without filters")
	}
}
