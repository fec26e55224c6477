package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/password_hasher_mock.go -package=mock

// PasswordHasher derives and checks the stored form of a principal's
// password.
//
// Hashes are self-describing PHC strings:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// so the parameters can be raised later without invalidating old hashes.
type PasswordHasher interface {
	// Hash returns the encoded hash of password under a fresh random salt.
	Hash(password string) (string, error)

	// Verify reports whether password matches encoded. It returns
	// ErrMalformedHash when encoded cannot be parsed.
	Verify(password, encoded string) (bool, error)
}
