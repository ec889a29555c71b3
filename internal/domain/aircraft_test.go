package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"
	"github.com/skydeals/skydeals-api/internal/domain"
)

func validAircraft(t *testing.T) *domain.Aircraft {
	t.Helper()
	a := domain.NewAircraft(uuid.New())
	a.Name = "Cessna 172 Skyhawk"
	a.SerialNumber = "17280001"
	a.Manufacturer = "Cessna"
	a.Model = "172S"
	a.Category = "Single Engine Piston"
	a.Year = "2008"
	a.Description = "Well maintained, fresh annual."
	a.Price = 250000
	a.Images = []string{"https://media.example.com/skydeals/images/1.jpg"}
	a.Address = "1 Hangar Rd"
	a.Country = "Canada"
	a.City = "Calgary"
	return a
}

func TestAircraftValidate(t *testing.T) {
	a := validAircraft(t)
	require.NoError(t, a.Validate())
	assert.False(t, a.IsApproved, "new listings start unapproved")
}

func TestAircraftValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Aircraft)
		wantErr error
	}{
		{name: "no owner", mutate: func(a *domain.Aircraft) { a.UserID = uuid.Nil }, wantErr: domain.ErrEmptyOwner},
		{name: "missing name", mutate: func(a *domain.Aircraft) { a.Name = "" }, wantErr: domain.ErrMissingField},
		{name: "missing city", mutate: func(a *domain.Aircraft) { a.City = "" }, wantErr: domain.ErrMissingField},
		{name: "bad category", mutate: func(a *domain.Aircraft) { a.Category = "Gliders" }, wantErr: domain.ErrInvalidCategory},
		{name: "zero price", mutate: func(a *domain.Aircraft) { a.Price = 0 }, wantErr: domain.ErrInvalidPrice},
		{name: "no images", mutate: func(a *domain.Aircraft) { a.Images = nil }, wantErr: domain.ErrNoImages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAircraft(t)
			tt.mutate(a)
			assert.ErrorIs(t, a.Validate(), tt.wantErr)
		})
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range domain.AircraftCategories {
		assert.True(t, domain.ValidCategory(c))
	}
	assert.False(t, domain.ValidCategory("Blimps"))
	assert.False(t, domain.ValidCategory(""))
}
