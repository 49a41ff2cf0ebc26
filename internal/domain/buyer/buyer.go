// Package buyer defines the explicit buyer identity threaded through checkout
// calls in place of an ambient authenticated-user global.
package buyer

// Context identifies the buyer for one checkout attempt. The profile fields a
// checkout submission carries are applied to this buyer's stored profile
// inside the commit transaction.
type Context struct {
	ID string
}

// Profile is the buyer's stored profile and default address.
type Profile struct {
	ID         string
	Username   string
	FirstName  string
	LastName   string
	Address1   string
	Address2   string
	ProvinceID string
	CityID     string
	Postcode   string
	Phone      string
	Email      string
}
