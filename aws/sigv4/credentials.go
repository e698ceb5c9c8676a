package sigv4

import "fmt"

// Credentials identify the caller and the signing scope. They are treated
// as an immutable value for the duration of one signing operation.
type Credentials struct {
	AccessKey string
	SecretKey string
	Region    string
	Service   string
}

// String implements fmt.Stringer without exposing the secret key.
func (c Credentials) String() string {
	secret := ""
	if c.SecretKey != "" {
		secret = "[REDACTED]"
	}
	return fmt.Sprintf("{AccessKey:%s SecretKey:%s Region:%s Service:%s}", c.AccessKey, secret, c.Region, c.Service)
}

// GoString keeps %#v from printing the secret key.
func (c Credentials) GoString() string {
	return "sigv4.Credentials" + c.String()
}

// Empty reports whether no access key or secret key is set.
func (c Credentials) Empty() bool {
	return c.AccessKey == "" || c.SecretKey == ""
}
