// Package account holds the demo accounts, their roles and the tokens that identify them.
package account

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("user not found")
	ErrForbidden          = errors.New("admin role required")
	ErrOwnRole            = errors.New("admins cannot change their own role")
	ErrUnknownRole        = errors.New("unknown role")
)

// Role grants access to the admin-only workflows.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleStorekeeper Role = "storekeeper"
	RoleViewer      Role = "viewer"
)

// ParseRole accepts a role name case-insensitively.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch r {
	case RoleAdmin, RoleStorekeeper, RoleViewer:
		return r, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownRole, raw)
}

// User is an account as seen by the rest of the service. The password hash never leaves this package.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Credential seeds the directory with a plaintext password.
type Credential struct {
	Email    string
	Name     string
	Password string
	Role     Role
}

// DemoCredentials are the fixed pairs shown on the login screen.
func DemoCredentials() []Credential {
	return []Credential{
		{Email: "admin@gmail.com", Name: "Administrator", Password: "Admin@1234", Role: RoleAdmin},
		{Email: "store@gmail.com", Name: "Storekeeper", Password: "Store@1234", Role: RoleStorekeeper},
		{Email: "viewer@gmail.com", Name: "Viewer", Password: "Viewer@1234", Role: RoleViewer},
	}
}

type record struct {
	user User
	hash []byte
}

// Directory is read-mostly; only SetRole writes after construction.
type Directory struct {
	mu    sync.RWMutex
	users map[string]*record
	order []string
}

// NewDirectory hashes every credential with the given bcrypt cost.
func NewDirectory(creds []Credential, cost int) (*Directory, error) {
	const op = "account.NewDirectory"

	d := &Directory{users: make(map[string]*record, len(creds))}
	for _, c := range creds {
		email := normalizeEmail(c.Email)
		if email == "" {
			return nil, fmt.Errorf("%s: empty email", op)
		}
		if _, dup := d.users[email]; dup {
			return nil, fmt.Errorf("%s: duplicate email %s", op, email)
		}
		role, err := ParseRole(string(c.Role))
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, email, err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		d.users[email] = &record{user: User{Email: email, Name: c.Name, Role: role}, hash: hash}
		d.order = append(d.order, email)
	}
	return d, nil
}

// Authenticate compares the password against the stored hash. Unknown emails and wrong
// passwords produce the same error.
func (d *Directory) Authenticate(email, password string) (User, error) {
	d.mu.RLock()
	rec, ok := d.users[normalizeEmail(email)]
	d.mu.RUnlock()
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return d.Get(email)
}

// Get returns the current state of a user.
func (d *Directory) Get(email string) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rec, ok := d.users[normalizeEmail(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return rec.user, nil
}

// List returns users in seed order.
func (d *Directory) List() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]User, 0, len(d.order))
	for _, email := range d.order {
		out = append(out, d.users[email].user)
	}
	return out
}

// SetRole lets an admin change another user's role.
func (d *Directory) SetRole(actor User, email string, role Role) (User, error) {
	role, err := ParseRole(string(role))
	if err != nil {
		return User{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// The actor's role is re-read so a stale token cannot keep admin rights.
	current, ok := d.users[normalizeEmail(actor.Email)]
	if !ok || !current.user.IsAdmin() {
		return User{}, ErrForbidden
	}
	target, ok := d.users[normalizeEmail(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	if target == current {
		return User{}, ErrOwnRole
	}
	target.user.Role = role
	return target.user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
