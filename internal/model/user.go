package model

// User mirrors the remote user serializer.  The portal never stores
// users; it only reads them for the auth context and admin screens.
//
// Fields:
//  ID          – remote primary key.
//  Username    – login name.
//  Email       – contact address.
//  FirstName   – given name.
//  LastName    – family name.
//  IsAdmin     – profile level admin flag.
//  IsStaff     – staff flag of the remote auth system.
//  IsSuperuser – superuser flag of the remote auth system.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// IsAdministrator reports whether the user may open the back-office.
func (u User) IsAdministrator() bool {
	return u.IsStaff || u.IsSuperuser || u.IsAdmin
}

// Credentials is the login body forwarded to the remote API.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up body forwarded to the remote API.
type Registration struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// ProfileUpdate is the partial update accepted on /users/profile/.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// UserForm is the body accepted by the admin user screens.  Password is
// only mandatory when creating a user; the handler enforces that.
type UserForm struct {
	Username    string `json:"username" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Password    string `json:"password,omitempty"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}
