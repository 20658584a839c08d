package model

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	DefaultAvatar = "/static/userdata/avatar/logo.png"
)

type User struct {
	ID           int     `db:"id" json:"id"`
	Email        string  `db:"email" json:"email"`
	PasswordHash string  `db:"password" json:"-"`
	Logo         string  `db:"logo" json:"logo"`
	Name         string  `db:"name" json:"name"`
	Surname      *string `db:"surname" json:"surname,omitempty"`
	Role         string  `db:"role" json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
