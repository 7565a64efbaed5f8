package enums

import "fmt"

// UserType distinguishes the account roles the platform serves.
type UserType string

const (
	UserTypeParent       UserType = "parent"
	UserTypeStudent      UserType = "student"
	UserTypeDriver       UserType = "driver"
	UserTypeParentDriver UserType = "parent_driver"
)

var validUserTypes = []UserType{
	UserTypeParent,
	UserTypeStudent,
	UserTypeDriver,
	UserTypeParentDriver,
}

// String implements fmt.Stringer.
func (u UserType) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserType.
func (u UserType) IsValid() bool {
	for _, candidate := range validUserTypes {
		if candidate == u {
			return true
		}
	}
	return false
}

// CanDrive reports whether the role is allowed to own schedules.
func (u UserType) CanDrive() bool {
	return u == UserTypeDriver || u == UserTypeParentDriver
}

// ParseUserType converts raw input into a UserType.
func ParseUserType(value string) (UserType, error) {
	for _, candidate := range validUserTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user type %q", value)
}
