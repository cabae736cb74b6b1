package bookinglist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
)

func TestListState_FilterChangesResetPage(t *testing.T) {
	s := NewListState()
	s.CurrentPage = 3

	s.SetSearchTerm("maria")
	assert.Equal(t, 1, s.CurrentPage)
	assert.Equal(t, "maria", s.SearchTerm)

	s.CurrentPage = 2
	s.SetStatusFilter(models.BookingStatusConfirmed)
	assert.Equal(t, 1, s.CurrentPage)
	assert.Equal(t, models.BookingStatusConfirmed, s.StatusFilter)
}

func TestListState_PagingIsClamped(t *testing.T) {
	s := NewListState()

	s.PrevPage()
	assert.Equal(t, 1, s.CurrentPage)

	s.NextPage(2)
	s.NextPage(2)
	assert.Equal(t, 2, s.CurrentPage)

	s.PrevPage()
	assert.Equal(t, 1, s.CurrentPage)
}
