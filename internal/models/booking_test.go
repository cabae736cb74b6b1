package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePassengers(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Passengers
		wantErr bool
	}{
		{name: "array", raw: `[{"name":"Ana","idNumber":"X1","ticketId":"T-1"}]`, want: Passengers{{Name: "Ana", IDNumber: "X1", TicketID: "T-1"}}},
		{name: "serialized string", raw: `"[{\"name\":\"Rui\",\"idNumber\":\"B2\",\"ticketId\":\"T-2\"}]"`, want: Passengers{{Name: "Rui", IDNumber: "B2", TicketID: "T-2"}}},
		{name: "empty", raw: ``, want: Passengers{}},
		{name: "null", raw: `null`, want: Passengers{}},
		{name: "empty array", raw: `[]`, want: Passengers{}},
		{name: "missing name", raw: `[{"idNumber":"Z9"}]`, want: Passengers{{IDNumber: "Z9"}}},
		{name: "garbage", raw: `{nope`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePassengers([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBooking_UnmarshalChangeRecord(t *testing.T) {
	record := `{
		"id": "b1",
		"route_id": "r1",
		"passengers": "[{\"name\":\"Ana Silva\",\"idNumber\":\"123LA\",\"ticketId\":\"TKT-9\"}]",
		"contact_phone": "+244900000000",
		"contact_email": null,
		"booking_status": "confirmed",
		"booking_date": "2024-10-29",
		"total_price": 15000,
		"created_at": "2024-10-29T08:00:00.123456+00:00"
	}`

	var b Booking
	require.NoError(t, json.Unmarshal([]byte(record), &b))
	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, "Ana Silva", b.Passengers.Names())
	assert.Equal(t, "+244900000000", b.Phone())
	assert.Equal(t, "", b.Email())
	assert.Equal(t, BookingStatusConfirmed, b.BookingStatus)
	assert.Equal(t, 15000.0, b.TotalPrice)
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus("")
	require.NoError(t, err)
	assert.Equal(t, BookingStatus(""), s)

	s, err = ParseBookingStatus("cancelled")
	require.NoError(t, err)
	assert.Equal(t, BookingStatusCancelled, s)

	_, err = ParseBookingStatus("refunded")
	assert.Error(t, err)
}

func TestBookingStatus_Label(t *testing.T) {
	assert.Equal(t, "confirmado", BookingStatusConfirmed.Label())
	assert.Equal(t, "pendente", BookingStatusPending.Label())
	assert.Equal(t, "cancelado", BookingStatusCancelled.Label())
}

func TestRouteLabel_Name(t *testing.T) {
	assert.Equal(t, "Luanda - Benguela", RouteLabel{Origin: "Luanda", Destination: "Benguela"}.Name())
	assert.Equal(t, "N/A - N/A", UnknownRoute.Name())
}
