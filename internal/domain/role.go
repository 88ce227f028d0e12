package domain

const (
	RoleNameMaxLen        = 50
	RoleDescriptionMaxLen = 500
)

const (
	AdminRoleID uint = 1
	UserRoleID  uint = 2
)

type Role struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Description *string `gorm:"size:500" json:"description,omitempty"`
}

// DefaultRoles returns the rows every initialized schema must contain.
func DefaultRoles() []Role {
	admin := "Full administrative access"
	user := "Standard user access"
	return []Role{
		{ID: AdminRoleID, Name: "Admin", Description: &admin},
		{ID: UserRoleID, Name: "User", Description: &user},
	}
}

func (r *Role) Validate() error {
	var errs fieldErrors
	errs.required("name", r.Name)
	errs.maxLen("name", r.Name, RoleNameMaxLen)
	errs.maxLenPtr("description", r.Description, RoleDescriptionMaxLen)
	return errs.err()
}
