package arbre

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
)

// ExtJar wraps the stdlib cookie jar and remembers every cookie it was given,
// keyed by URL, so a session can be persisted with Save and restored with
// Load. The stdlib jar alone offers no way to enumerate its contents.
type ExtJar struct {
	jar     *cookiejar.Jar
	cookies map[string][]*http.Cookie
}

func NewJar() *ExtJar {
	jar, _ := cookiejar.New(nil)
	return &ExtJar{jar: jar, cookies: make(map[string][]*http.Cookie)}
}

func (j *ExtJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

func (j *ExtJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.cookies[u.String()] = cookies
	j.jar.SetCookies(u, cookies)
}

// Save writes the remembered cookies to path as JSON.
func (j *ExtJar) Save(path string) error {
	data, err := json.Marshal(j.cookies)
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write cookies: %w", err)
	}

	return nil
}

// Load reads cookies written by Save and replays them into the jar.
func (j *ExtJar) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read cookies: %w", err)
	}

	var all map[string][]*http.Cookie

	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("decode cookies: %w", err)
	}

	for raw, cookies := range all {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("cookie url %q: %w", raw, err)
		}

		j.jar.SetCookies(u, cookies)
		j.cookies[raw] = cookies
	}

	return nil
}
