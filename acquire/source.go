package acquire

import (
	"net/url"
	"os"

	"github.com/willibrandon/gonuget-acquire/auth"
)

// ParseSource builds a PackageSource from a URL/path string and an
// optional token/basic-credential pair, the glue the distilled spec
// assumes exists (sources arrive pre-parsed) but never specifies how to
// build. A string that parses as an http(s) URL is RemoteNuget; anything
// else — or a string naming an existing directory — is LocalPath.
//
// At most one of token or (user, password) should be set; token takes
// precedence if both are given.
func ParseSource(raw, token, user, password string) PackageSource {
	if parsed, err := url.Parse(raw); err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		return NewRemoteSource(raw, authenticatorFor(token, user, password))
	}

	if info, err := os.Stat(raw); err == nil && info.IsDir() {
		return NewLocalSource(raw)
	}

	return NewLocalSource(raw)
}

func authenticatorFor(token, user, password string) auth.Authenticator {
	switch {
	case token != "":
		return auth.NewBearerAuthenticator(token)
	case user != "" || password != "":
		return auth.NewBasicAuthenticator(user, password)
	default:
		return nil
	}
}
