package schema

// UserRecord is a stored user account. Records live in the '_system'
// namespace under the 'users' bucket, keyed by uid. The password hash
// never leaves the server.
type UserRecord struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	PasswordHash  string `json:"-"`
	EmailVerified bool   `json:"email_verified"`
	CreatedAt     int64  `json:"created_at"` // Unix milliseconds
}
