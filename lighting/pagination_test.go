package lighting

import "testing"

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name        string
		page        int
		perPage     int
		wantPage    int
		wantPerPage int
	}{
		{name: "zero values use defaults", page: 0, perPage: 0, wantPage: 1, wantPerPage: 50},
		{name: "negative page floors to 1", page: -3, perPage: 10, wantPage: 1, wantPerPage: 10},
		{name: "perPage above ceiling clamps", page: 2, perPage: 500, wantPage: 2, wantPerPage: 100},
		{name: "in-range values pass through", page: 3, perPage: 25, wantPage: 3, wantPerPage: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, perPage := NormalizePage(tt.page, tt.perPage)
			if page != tt.wantPage || perPage != tt.wantPerPage {
				t.Errorf("NormalizePage(%d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.perPage, page, perPage, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

func TestPageOf(t *testing.T) {
	p := PageOf(120, 2, 50)
	if p.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", p.TotalPages)
	}
	if !p.HasMore {
		t.Error("page 2 of 3 should have more")
	}

	last := PageOf(120, 3, 50)
	if last.HasMore {
		t.Error("last page should not have more")
	}
}

func TestSlicePage(t *testing.T) {
	start, end := SlicePage(10, 2, 4)
	if start != 4 || end != 8 {
		t.Errorf("SlicePage(10, 2, 4) = (%d, %d), want (4, 8)", start, end)
	}

	// Page past the end yields an empty window, not a panic.
	start, end = SlicePage(10, 9, 4)
	if start != 10 || end != 10 {
		t.Errorf("SlicePage(10, 9, 4) = (%d, %d), want (10, 10)", start, end)
	}
}

func TestParseChannelType(t *testing.T) {
	if got := ParseChannelType("red"); got != ChannelRed {
		t.Errorf("ParseChannelType(red) = %s", got)
	}
	if got := ParseChannelType("smoke-machine"); got != ChannelOther {
		t.Errorf("unknown type should normalize to other, got %s", got)
	}
}
