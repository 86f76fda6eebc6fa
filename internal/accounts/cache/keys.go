package cache

import "fmt"

// ListingNamespace versions every cached page of the user listing.
const ListingNamespace = "users:list"

// UserNamespace versions the cached profile of one user.
func UserNamespace(id string) string {
	return "user:" + id
}

// UserKey is the key of a cached profile under version ver.
func UserKey(ver int64, id string) string {
	return fmt.Sprintf("user:%s:v%d", id, ver)
}

// ListingKey is the key of one cached listing page under version ver.
func ListingKey(ver int64, page, limit int) string {
	return fmt.Sprintf("users:v%d:page=%d:limit=%d", ver, page, limit)
}
