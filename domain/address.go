package domain

// AddressType is the fixed category set the backend accepts.
type AddressType string

const (
	AddressHome   AddressType = "HOME"
	AddressWork   AddressType = "WORK"
	AddressOffice AddressType = "OFFICE"
	AddressOther  AddressType = "OTHER"
)

// Valid reports whether the type is one of the accepted categories.
func (t AddressType) Valid() bool {
	switch t {
	case AddressHome, AddressWork, AddressOffice, AddressOther:
		return true
	}
	return false
}

// Address is a user address record. Owned by the backend; the hub only
// caches it view-locally after a fetch. At most one record per user should
// be primary (server-authoritative, not enforced here).
type Address struct {
	Street      string      `json:"street"`
	City        string      `json:"city"`
	State       string      `json:"state"`
	PostalCode  string      `json:"postalCode"`
	Country     string      `json:"country"`
	PhoneNumber string      `json:"phoneNumber"`
	IsPrimary   bool        `json:"isPrimary"`
	Type        AddressType `json:"type"`
}
