package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatal("hash equals the plaintext")
	}
	if !CheckPassword(hash, "hunter2hunter2") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter3hunter3") {
		t.Error("wrong password accepted")
	}
	if CheckPassword("not-a-bcrypt-hash", "hunter2hunter2") {
		t.Error("garbage hash accepted")
	}
}

func issuedRequest(t *testing.T, secret string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	IssueAdminCookie(rec, secret, false)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("issued %d cookies, want 1", len(cookies))
	}
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookies[0])
	return req
}

func TestAdminCookieRoundTrip(t *testing.T) {
	req := issuedRequest(t, testSecret)
	if !VerifyAdminCookie(req, testSecret) {
		t.Error("freshly issued cookie rejected")
	}
	if VerifyAdminCookie(req, "a-different-secret-entirely-here") {
		t.Error("cookie verified under the wrong secret")
	}
}

func TestAdminCookieTampered(t *testing.T) {
	req := issuedRequest(t, testSecret)
	c, err := req.Cookie(CookieName)
	if err != nil {
		t.Fatal(err)
	}

	for _, value := range []string{
		"",
		"no-dot-here",
		"notanumber." + sign(time.Now().Add(time.Hour).Unix(), testSecret),
		c.Value + "00",
		cookieValue(time.Now().Add(time.Hour).Unix(), "other-secret"),
	} {
		bad := httptest.NewRequest(http.MethodGet, "/admin", nil)
		bad.AddCookie(&http.Cookie{Name: CookieName, Value: value})
		if VerifyAdminCookie(bad, testSecret) {
			t.Errorf("tampered cookie %q verified", value)
		}
	}
}

// A cookie signed with the right secret but carrying a past expiry must be
// rejected even though its signature checks out.
func TestAdminCookieExpired(t *testing.T) {
	expired := cookieValue(time.Now().Add(-time.Minute).Unix(), testSecret)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: expired})
	if VerifyAdminCookie(req, testSecret) {
		t.Error("expired cookie verified")
	}
}

func TestClearAdminCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearAdminCookie(rec)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("set %d cookies, want 1", len(cookies))
	}
	if cookies[0].MaxAge != -1 {
		t.Errorf("MaxAge = %d, want -1", cookies[0].MaxAge)
	}
	if cookies[0].Value != "" {
		t.Errorf("Value = %q, want empty", cookies[0].Value)
	}
}

func TestAdminContext(t *testing.T) {
	ctx := context.Background()
	if IsAdmin(ctx) {
		t.Error("bare context reports admin")
	}
	if !IsAdmin(WithAdmin(ctx)) {
		t.Error("marked context does not report admin")
	}
}
