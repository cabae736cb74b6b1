package bookinglist

import "github.com/Wolf-Quiteque/100destinosBackend/internal/models"

// ListState is what one operator has typed and selected. Each consumer
// owns its own value; the View it renders against is shared.
type ListState struct {
	SearchTerm   string               `json:"search_term"`
	StatusFilter models.BookingStatus `json:"status_filter"`
	CurrentPage  int                  `json:"current_page"`
}

// NewListState starts on page 1 with no filters.
func NewListState() ListState {
	return ListState{CurrentPage: 1}
}

// SetSearchTerm changes the term and goes back to page 1.
func (s *ListState) SetSearchTerm(term string) {
	s.SearchTerm = term
	s.CurrentPage = 1
}

// SetStatusFilter changes the status and goes back to page 1.
func (s *ListState) SetStatusFilter(status models.BookingStatus) {
	s.StatusFilter = status
	s.CurrentPage = 1
}

// NextPage advances unless already on the last page.
func (s *ListState) NextPage(totalPages int) {
	if s.CurrentPage < totalPages {
		s.CurrentPage++
	}
}

// PrevPage goes back unless already on page 1.
func (s *ListState) PrevPage() {
	if s.CurrentPage > 1 {
		s.CurrentPage--
	}
}

func (s ListState) page() int {
	if s.CurrentPage < 1 {
		return 1
	}
	return s.CurrentPage
}
