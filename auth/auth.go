package auth

import (
	"crypto/sha256"
	"log"
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"brewfinder/models"
	"brewfinder/store"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const SessionName = "brewfinder-session"

// User-facing messages. Credential mismatches of any kind surface
// MsgInvalidCredentials so a probe cannot learn whether a username exists.
const (
	MsgUsernameExists     = "Username already exists"
	MsgEmailRegistered    = "Email already registered"
	MsgUsernameTooShort   = "Username must be at least 3 characters long"
	MsgUsernameCharset    = "Username can only contain letters, numbers, and underscores"
	MsgWeakPassword       = "Password must be at least 8 characters with uppercase letters, lowercase letters, numbers, and symbols."
	MsgRegistered         = "Registration successful! Welcome to BrewFinder!"
	MsgSaveFailed         = "Failed to save user data."
	MsgLoginSuccess       = "Login successful! Welcome back!"
	MsgInvalidCredentials = "Invalid username or password"
	MsgLoggedOut          = "Logged out successfully"
	MsgAutoLoginFailed    = "Registration successful but auto-login failed. Please login manually."
)

// dummyHash is compared against when no user record matched, so a login
// attempt for an unknown username costs the same as one for a known
// username with a wrong password.
const dummyHash = "$2a$14$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Service implements registration, credential verification, and the session
// lifecycle on top of the file-backed user store. Session state lives in the
// request/response pair, never in the service itself.
type Service struct {
	users    *store.Store
	sessions *sessions.CookieStore
}

func NewService(users *store.Store, sessionKey string) *Service {
	// Derive two 32-byte keys from the session key:
	// auth key for signing (HMAC), encryption key for content (AES).
	authKey := sha256.Sum256([]byte(sessionKey + "auth"))
	encKey := sha256.Sum256([]byte(sessionKey + "encryption"))

	cookieStore := sessions.NewCookieStore(authKey[:], encKey[:])
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0, // session cookie, gone when the browser closes
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}

	return &Service{users: users, sessions: cookieStore}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IsStrongPassword requires at least 8 characters with an uppercase letter,
// a lowercase letter, a digit, and a symbol from a fixed punctuation set.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune("!@#$%^&*()-_=+{};:,<.>", r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

func IsValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// Register validates and creates a new user record. The first failing rule
// short-circuits with its specific message; rule order matters and is part
// of the contract. Registration never establishes a session by itself.
func (s *Service) Register(username, email, password string) models.AuthResult {
	users := s.users.Load()

	for _, u := range users {
		if u.Username == username {
			return models.AuthResult{Success: false, Message: MsgUsernameExists}
		}
		if u.Email == email {
			return models.AuthResult{Success: false, Message: MsgEmailRegistered}
		}
	}

	if len(username) < 3 {
		return models.AuthResult{Success: false, Message: MsgUsernameTooShort}
	}
	if !usernameRe.MatchString(username) {
		return models.AuthResult{Success: false, Message: MsgUsernameCharset}
	}
	if !IsStrongPassword(password) {
		return models.AuthResult{Success: false, Message: MsgWeakPassword}
	}

	hash, err := HashPassword(password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return models.AuthResult{Success: false, Message: MsgSaveFailed}
	}

	newUser := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
		LastLogin:    nil,
		IsActive:     true,
	}

	if err := s.users.Append(newUser); err != nil {
		return models.AuthResult{Success: false, Message: MsgSaveFailed}
	}
	return models.AuthResult{Success: true, Message: MsgRegistered}
}

// Login matches identifier against username or email (exact, case-sensitive)
// among active users, verifies the password, records the login time, and
// writes the session snapshot. Any mismatch returns one generic message.
func (s *Service) Login(w http.ResponseWriter, r *http.Request, identifier, password string) models.AuthResult {
	users := s.users.Load()

	var matched *models.User
	for i := range users {
		u := &users[i]
		if (u.Username == identifier || u.Email == identifier) && u.IsActive {
			matched = u
			break
		}
	}

	// Always run the bcrypt compare so unknown and known usernames
	// take the same time.
	targetHash := dummyHash
	if matched != nil {
		targetHash = matched.PasswordHash
	}
	ok := CheckPasswordHash(password, targetHash)

	if matched == nil || !ok {
		return models.AuthResult{Success: false, Message: MsgInvalidCredentials}
	}

	now := time.Now()
	matched.LastLogin = &now
	if err := s.users.Update(*matched); err != nil {
		log.Printf("Failed to record last login for %s: %v", matched.Username, err)
	}

	s.setSession(w, r, *matched)
	return models.AuthResult{Success: true, Message: MsgLoginSuccess}
}

// Logout destroys the session unconditionally.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) models.AuthResult {
	session, _ := s.sessions.Get(r, SessionName)
	for key := range session.Values {
		delete(session.Values, key)
	}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to clear session: %v", err)
	}
	return models.AuthResult{Success: true, Message: MsgLoggedOut}
}

func (s *Service) IsLoggedIn(r *http.Request) bool {
	_, ok := s.CurrentUser(r)
	return ok
}

// CurrentUser returns the snapshot stored at login time. It reflects the
// record as it was then; profile changes surface on the next login.
func (s *Service) CurrentUser(r *http.Request) (models.SessionUser, bool) {
	session, _ := s.sessions.Get(r, SessionName)

	id, ok := session.Values["userID"].(string)
	if !ok || id == "" {
		return models.SessionUser{}, false
	}
	username, _ := session.Values["username"].(string)
	email, _ := session.Values["email"].(string)

	var createdAt time.Time
	if raw, ok := session.Values["createdAt"].(string); ok {
		createdAt, _ = time.Parse(time.RFC3339, raw)
	}

	return models.SessionUser{
		ID:        id,
		Username:  username,
		Email:     email,
		CreatedAt: createdAt,
	}, true
}

func (s *Service) setSession(w http.ResponseWriter, r *http.Request, user models.User) {
	session, _ := s.sessions.Get(r, SessionName)
	session.Values["userID"] = user.ID
	session.Values["username"] = user.Username
	session.Values["email"] = user.Email
	session.Values["createdAt"] = user.CreatedAt.Format(time.RFC3339)
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to save session: %v", err)
	}
}
