package users

import "codeberg.org/starterkit/server/storefront/users"

// UsersListResponse wraps a list of users
type UsersListResponse struct {
	Users []users.User `json:"users"`
	Count int          `json:"count"`
}
