package helpers

import "testing"

func TestNewPageClamps(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		want       Page
	}{
		{"defaults", 0, 0, Page{Number: 1, Size: DefaultPageSize}},
		{"negative page", -3, 10, Page{Number: 1, Size: 10}},
		{"oversized", 2, MaxPageSize + 1, Page{Number: 2, Size: DefaultPageSize}},
		{"valid", 3, 50, Page{Number: 3, Size: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewPage(tt.page, tt.size); got != tt.want {
				t.Errorf("NewPage(%d, %d) = %+v, want %+v", tt.page, tt.size, got, tt.want)
			}
		})
	}
}

func TestPageOffset(t *testing.T) {
	p := NewPage(3, 10)
	if p.Offset() != 20 || p.Limit() != 10 {
		t.Errorf("offset/limit = %d/%d, want 20/10", p.Offset(), p.Limit())
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, NewPage(9, 10))
	if info.TotalPages != 5 {
		t.Errorf("TotalPages = %d, want 5", info.TotalPages)
	}
	if info.CurrentPage != 5 {
		t.Errorf("CurrentPage = %d, want clamped 5", info.CurrentPage)
	}

	empty := NewPaginationInfo(0, NewPage(1, 10))
	if empty.TotalPages != 1 || empty.CurrentPage != 1 {
		t.Errorf("empty info = %+v", empty)
	}
}
