package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oranmed/candidat/internal/client/models"
	"github.com/oranmed/candidat/internal/client/validation"
)

func validProfile() models.RegistrationProfile {
	return models.RegistrationProfile{
		GivenName:  "Amina",
		FamilyName: "Benali",
		Email:      "amina@example.dz",
		Password:   "secret123",
		Track:      models.TrackMedicine,
		BirthDate:  "2000-01-15",
		Phone:      "+213555000111",
	}
}

func TestValidateStruct_RegistrationProfile(t *testing.T) {
	v := validation.NewGoPlaygroundValidator()

	t.Run("valid profile", func(t *testing.T) {
		assert.Nil(t, v.ValidateStruct(validProfile()))
	})

	t.Run("missing required fields", func(t *testing.T) {
		errs := v.ValidateStruct(models.RegistrationProfile{})
		assert.Equal(t, "GivenName is required", errs["GivenName"])
		assert.Equal(t, "Email is required", errs["Email"])
		assert.Equal(t, "Password is required", errs["Password"])
	})

	t.Run("bad email", func(t *testing.T) {
		p := validProfile()
		p.Email = "not-an-email"
		errs := v.ValidateStruct(p)
		assert.Equal(t, "Email must be a valid email address", errs["Email"])
	})

	t.Run("short password", func(t *testing.T) {
		p := validProfile()
		p.Password = "short"
		errs := v.ValidateStruct(p)
		assert.Equal(t, "Password must be at least 8 characters", errs["Password"])
	})

	t.Run("unknown track", func(t *testing.T) {
		p := validProfile()
		p.Track = "law"
		errs := v.ValidateStruct(p)
		assert.Equal(t, "Track must be one of: medicine pharmacy dentistry", errs["Track"])
	})

	t.Run("bad birth date", func(t *testing.T) {
		p := validProfile()
		p.BirthDate = "15/01/2000"
		errs := v.ValidateStruct(p)
		assert.Equal(t, "BirthDate must be a date in the form 2006-01-02", errs["BirthDate"])
	})
}
