package models

// RegistrationProfile is the full candidate profile submitted at
// registration. Validation tags are consumed by the presentation layer
// before the request is sent; the session core itself does not validate,
// the server remains authoritative.
type RegistrationProfile struct {
	GivenName  string `json:"name" validate:"required"`
	FamilyName string `json:"surname" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Track      Track  `json:"track" validate:"required,oneof=medicine pharmacy dentistry"`
	BirthDate  string `json:"dob" validate:"required,datetime=2006-01-02"`
	Phone      string `json:"phone" validate:"required"`
}
