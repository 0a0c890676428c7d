package enums

type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleCustomer || r == UserRoleAdmin
}
