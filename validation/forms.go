package validation

// LoginForm is the login submission checked before any network call.
type LoginForm struct {
	Username string `json:"username" validate:"required,min=3,username"`
	Password string `json:"password" validate:"required"`
}

// RegisterForm is the registration submission. ConfirmPassword must match
// Password; it is never transmitted.
type RegisterForm struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName"`
	Username        string `json:"username" validate:"required,min=3,username"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// AddressForm is a new address submission.
type AddressForm struct {
	Street      string `json:"street" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country" validate:"required"`
	PhoneNumber string `json:"phoneNumber"`
	IsPrimary   bool   `json:"isPrimary"`
	Type        string `json:"type" validate:"required,oneof=HOME WORK OFFICE OTHER"`
}
