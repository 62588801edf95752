package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"brewfinder/store"
)

const testSessionKey = "test-secret-key-12345678901234567890123456789012"

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	users := store.New(filepath.Join(t.TempDir(), "users.json"))
	return NewService(users, testSessionKey), users
}

// requestWithSession replays the cookies written to w onto a fresh request.
func requestWithSession(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest("GET", "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestIsStrongPassword(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"Abcdefg1!", true},
		{"abcdefg1", false},  // no uppercase, no symbol
		{"ABCDEFG1!", false}, // no lowercase
		{"Abcdefgh!", false}, // no digit
		{"Abcdefg1", false},  // no symbol
		{"Ab1!", false},      // too short
		{"Str0ng-pass", true},
	}
	for _, c := range cases {
		if got := IsStrongPassword(c.password); got != c.want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", c.password, got, c.want)
		}
	}
}

func TestRegisterValidationOrder(t *testing.T) {
	svc, _ := newTestService(t)

	if res := svc.Register("alice", "a@x.com", "Abcdefg1!"); !res.Success {
		t.Fatalf("Expected registration to succeed, got %q", res.Message)
	}

	cases := []struct {
		name     string
		username string
		email    string
		password string
		want     string
	}{
		{"duplicate username", "alice", "other@x.com", "Abcdefg1!", MsgUsernameExists},
		{"duplicate email", "carol", "a@x.com", "Abcdefg1!", MsgEmailRegistered},
		{"short username", "ab", "ab@x.com", "Abcdefg1!", MsgUsernameTooShort},
		{"bad charset", "bad name", "bad@x.com", "Abcdefg1!", MsgUsernameCharset},
		{"weak password", "carol", "c@x.com", "abcdefg1", MsgWeakPassword},
	}
	for _, c := range cases {
		res := svc.Register(c.username, c.email, c.password)
		if res.Success {
			t.Errorf("%s: expected failure", c.name)
		}
		if res.Message != c.want {
			t.Errorf("%s: got message %q, want %q", c.name, res.Message, c.want)
		}
	}
}

func TestDuplicateUsernameLeavesStoreUnchanged(t *testing.T) {
	svc, users := newTestService(t)

	if res := svc.Register("alice", "a@x.com", "Abcdefg1!"); !res.Success {
		t.Fatalf("Setup registration failed: %q", res.Message)
	}
	before := users.Load()

	res := svc.Register("alice", "dup@x.com", "Abcdefg1!")
	if res.Success || res.Message != MsgUsernameExists {
		t.Fatalf("Expected %q, got success=%v message=%q", MsgUsernameExists, res.Success, res.Message)
	}

	after := users.Load()
	if len(after) != len(before) {
		t.Errorf("Store changed on failed registration: %d -> %d users", len(before), len(after))
	}
}

func TestRegisterThenLogin(t *testing.T) {
	svc, users := newTestService(t)

	if res := svc.Register("alice", "a@x.com", "Abcdefg1!"); !res.Success {
		t.Fatalf("Registration failed: %q", res.Message)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/", nil)
	res := svc.Login(w, r, "alice", "Abcdefg1!")
	if !res.Success {
		t.Fatalf("Login failed: %q", res.Message)
	}
	if res.Message != MsgLoginSuccess {
		t.Errorf("Got message %q, want %q", res.Message, MsgLoginSuccess)
	}

	user, ok := svc.CurrentUser(requestWithSession(w))
	if !ok {
		t.Fatal("CurrentUser returned no session after login")
	}
	if user.Username != "alice" || user.Email != "a@x.com" {
		t.Errorf("Session snapshot mismatch: %+v", user)
	}

	// Login records the last-login timestamp.
	stored := users.Load()
	if len(stored) != 1 || stored[0].LastLogin == nil {
		t.Error("Expected last-login timestamp to be recorded")
	}
}

func TestLoginByEmail(t *testing.T) {
	svc, _ := newTestService(t)
	if res := svc.Register("alice", "a@x.com", "Abcdefg1!"); !res.Success {
		t.Fatalf("Registration failed: %q", res.Message)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/", nil)
	if res := svc.Login(w, r, "a@x.com", "Abcdefg1!"); !res.Success {
		t.Errorf("Login by email failed: %q", res.Message)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)
	if res := svc.Register("alice", "a@x.com", "Abcdefg1!"); !res.Success {
		t.Fatalf("Registration failed: %q", res.Message)
	}

	wrongPassword := svc.Login(httptest.NewRecorder(), httptest.NewRequest("POST", "/", nil), "alice", "WrongPass1!")
	noSuchUser := svc.Login(httptest.NewRecorder(), httptest.NewRequest("POST", "/", nil), "nobody", "WrongPass1!")

	if wrongPassword.Success || noSuchUser.Success {
		t.Fatal("Expected both logins to fail")
	}
	if wrongPassword.Message != noSuchUser.Message {
		t.Errorf("Failure messages differ: %q vs %q", wrongPassword.Message, noSuchUser.Message)
	}
	if wrongPassword.Message != MsgInvalidCredentials {
		t.Errorf("Got message %q, want %q", wrongPassword.Message, MsgInvalidCredentials)
	}
}

func TestInactiveUserCannotLogin(t *testing.T) {
	svc, users := newTestService(t)
	if res := svc.Register("alice", "a@x.com", "Abcdefg1!"); !res.Success {
		t.Fatalf("Registration failed: %q", res.Message)
	}

	stored := users.Load()
	stored[0].IsActive = false
	if err := users.Save(stored); err != nil {
		t.Fatal(err)
	}

	res := svc.Login(httptest.NewRecorder(), httptest.NewRequest("POST", "/", nil), "alice", "Abcdefg1!")
	if res.Success {
		t.Error("Inactive user logged in")
	}
	if res.Message != MsgInvalidCredentials {
		t.Errorf("Got message %q, want %q", res.Message, MsgInvalidCredentials)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	svc, _ := newTestService(t)
	if res := svc.Register("alice", "a@x.com", "Abcdefg1!"); !res.Success {
		t.Fatalf("Registration failed: %q", res.Message)
	}

	loginW := httptest.NewRecorder()
	if res := svc.Login(loginW, httptest.NewRequest("POST", "/", nil), "alice", "Abcdefg1!"); !res.Success {
		t.Fatalf("Login failed: %q", res.Message)
	}

	logoutW := httptest.NewRecorder()
	res := svc.Logout(logoutW, requestWithSession(loginW))
	if !res.Success || res.Message != MsgLoggedOut {
		t.Errorf("Logout result: success=%v message=%q", res.Success, res.Message)
	}

	if svc.IsLoggedIn(requestWithSession(logoutW)) {
		t.Error("Session survived logout")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("Abcdefg1!")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "Abcdefg1!" {
		t.Fatal("Hash equals plaintext")
	}
	if !CheckPasswordHash("Abcdefg1!", hash) {
		t.Error("Correct password rejected")
	}
	if CheckPasswordHash("abcdefg1", hash) {
		t.Error("Wrong password accepted")
	}
}
