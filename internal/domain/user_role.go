package domain

import "time"

// UserRole assigns a role to a user. Only the key columns are ever loaded;
// the User and Role fields exist so the schema carries cascading foreign keys.
type UserRole struct {
	UserID     uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	RoleID     uint      `gorm:"primaryKey;autoIncrement:false;index" json:"role_id"`
	AssignedAt time.Time `gorm:"not null" json:"assigned_at"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Role Role `gorm:"foreignKey:RoleID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func NewUserRole(userID, roleID uint, now time.Time) *UserRole {
	return &UserRole{UserID: userID, RoleID: roleID, AssignedAt: now.UTC()}
}

func (ur *UserRole) Validate() error {
	var errs fieldErrors
	if ur.UserID == 0 {
		errs = append(errs, FieldError{Field: "user_id", Reason: "is required"})
	}
	if ur.RoleID == 0 {
		errs = append(errs, FieldError{Field: "role_id", Reason: "is required"})
	}
	return errs.err()
}
