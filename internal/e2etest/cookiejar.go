package e2etest

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
)

// unsafeCookieJar stores Secure cookies as plain ones so that the session cookie survives over the plain HTTP test
// server.
type unsafeCookieJar struct {
	jar *cookiejar.Jar
}

func newUnsafeCookieJar() (*unsafeCookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("new cookie jar: %w", err)
	}
	return &unsafeCookieJar{jar: jar}, nil
}

func (j *unsafeCookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	insecure := make([]*http.Cookie, len(cookies))
	for i, c := range cookies {
		cc := *c
		cc.Secure = false
		insecure[i] = &cc
	}
	j.jar.SetCookies(u, insecure)
}

func (j *unsafeCookieJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}
