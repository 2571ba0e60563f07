// Package cookie writes and clears the session cookie that carries the
// session token between the browser and the API.
package cookie

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Name is the session cookie name.
const Name = "token"

// Jar holds the attributes shared by every session cookie the API emits.
type Jar struct {
	Secure   bool
	SameSite http.SameSite
	Domain   string
	// Now overrides the clock used to derive Max-Age. Defaults to time.Now.
	Now func() time.Time
}

// Set attaches a session cookie that expires together with the token. A
// token already past expiresAt clears the cookie instead.
func (j Jar) Set(c echo.Context, token string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(j.now()) / time.Second)
	if maxAge <= 0 {
		j.Clear(c)
		return
	}
	ck := j.base()
	ck.Value = token
	ck.MaxAge = maxAge
	ck.Expires = expiresAt
	c.SetCookie(ck)
}

// Clear instructs the browser to drop the session cookie.
func (j Jar) Clear(c echo.Context) {
	ck := j.base()
	ck.MaxAge = -1
	ck.Expires = time.Unix(0, 0)
	c.SetCookie(ck)
}

// Read returns the raw session token, or "" when the cookie is absent.
func Read(c echo.Context) string {
	ck, err := c.Cookie(Name)
	if err != nil {
		return ""
	}
	return ck.Value
}

func (j Jar) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j Jar) base() *http.Cookie {
	return &http.Cookie{
		Name:     Name,
		Path:     "/",
		Domain:   j.Domain,
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: j.SameSite,
	}
}
