package store

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/diewo77/kinz/internal/models"
	"github.com/diewo77/kinz/validation"
)

// Users returns all users without their password hashes.
func (s *Store) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, len(s.users))
	for i, u := range s.users {
		out[i] = u.Public()
	}
	return out
}

func (s *Store) User(id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexByID(s.users, id); i >= 0 {
		return s.users[i].Public(), nil
	}
	return models.User{}, ErrNotFound
}

// AddUser creates an active user. The password is stored as a bcrypt hash
// and a missing permission map gets the role's default set.
func (s *Store) AddUser(ctx context.Context, u models.User) (models.User, error) {
	v := validation.Violations{}
	validation.Required("name", u.Name, v)
	validation.Required("username", u.Username, v)
	validation.Required("password", u.Password, v)
	validation.OneOf("role", u.Role, []string{models.RoleAdmin, models.RoleUser}, v)
	if err := invalid(v); err != nil {
		return models.User{}, err
	}
	hash, err := hashPassword(u.Password)
	if err != nil {
		return models.User{}, err
	}
	err = s.apply(ctx, func(c *change) error {
		if indexWhere(s.users, func(o models.User) bool { return o.Username == u.Username }) >= 0 {
			return invalid(validation.Violations{"username": "taken"})
		}
		u.ID = s.newID()
		u.Password = hash
		u.Status = models.UserActive
		if u.Role == "" {
			u.Role = models.RoleUser
		}
		if u.Permissions == nil {
			u.Permissions = rolePermissions(u.Role)
		}
		s.users = append(s.users, u)
		c.insert(Users, u)
		return nil
	})
	return u.Public(), err
}

// UpdateUser replaces the user with the same id. An empty password keeps
// the stored one. The signed-in user is refreshed when it is the one
// being updated.
func (s *Store) UpdateUser(ctx context.Context, u models.User) error {
	var hash string
	if u.Password != "" {
		h, err := hashPassword(u.Password)
		if err != nil {
			return err
		}
		hash = h
	}
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.users, u.ID)
		if i < 0 {
			return nil
		}
		u.Password = hash
		if hash == "" {
			u.Password = s.users[i].Password
		}
		s.users[i] = u
		c.update(Users, u.ID, u)
		if s.currentUser != nil && s.currentUser.ID == u.ID {
			pub := u.Public()
			s.currentUser = &pub
			c.touch(CurrentUser)
		}
		return nil
	})
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.apply(ctx, func(c *change) error {
		i := indexByID(s.users, id)
		if i < 0 {
			return nil
		}
		s.users = without(s.users, i)
		c.remove(Users, id)
		return nil
	})
}

// Login signs in by username or email. Passwords stored in clear text by
// older versions are accepted once and rehashed.
func (s *Store) Login(ctx context.Context, login, password string) (models.User, bool) {
	var (
		out models.User
		ok  bool
	)
	_ = s.apply(ctx, func(c *change) error {
		i := indexWhere(s.users, func(u models.User) bool {
			return login != "" && (u.Username == login || (u.Email != "" && strings.EqualFold(u.Email, login)))
		})
		if i < 0 {
			return nil
		}
		u := s.users[i]
		switch {
		case isHash(u.Password):
			if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
				return nil
			}
		case u.Password == password:
			if hash, err := hashPassword(password); err == nil {
				s.users[i].Password = hash
				c.update(Users, u.ID, map[string]any{"password": hash})
			}
		default:
			return nil
		}
		pub := s.users[i].Public()
		s.currentUser = &pub
		c.touch(CurrentUser)
		out, ok = pub, true
		return nil
	})
	return out, ok
}

func (s *Store) Logout(ctx context.Context) {
	_ = s.apply(ctx, func(c *change) error {
		s.currentUser = nil
		c.touch(CurrentUser)
		return nil
	})
}

// CurrentUser returns the signed-in user, if any.
func (s *Store) CurrentUser() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentUser == nil {
		return models.User{}, false
	}
	return *s.currentUser, true
}

// backfillPermissions gives admins every capability, keeping what their
// own map says, and gives non-admins without a map the default set. It
// runs once per load.
func (s *Store) backfillPermissions() {
	for i, u := range s.users {
		switch {
		case u.IsAdmin():
			perms := models.AdminPermissions()
			for k, v := range u.Permissions {
				perms[k] = v
			}
			s.users[i].Permissions = perms
		case u.Permissions == nil:
			s.users[i].Permissions = models.DefaultPermissions()
		}
	}
}

// refreshCurrentUser swaps the signed-in user for the stored record when
// its permissions changed underneath it. Caller holds mu.
func (s *Store) refreshCurrentUser() bool {
	if s.currentUser == nil {
		return false
	}
	cur := s.currentUser
	i := indexWhere(s.users, func(u models.User) bool { return u.ID == cur.ID || u.Username == cur.Username })
	if i < 0 || models.SamePermissions(s.users[i].Permissions, cur.Permissions) {
		return false
	}
	pub := s.users[i].Public()
	s.currentUser = &pub
	return true
}

func rolePermissions(role string) map[string]bool {
	if role == models.RoleAdmin {
		return models.AdminPermissions()
	}
	return models.DefaultPermissions()
}

func hashPassword(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func isHash(pw string) bool {
	return strings.HasPrefix(pw, "$2a$") || strings.HasPrefix(pw, "$2b$") || strings.HasPrefix(pw, "$2y$")
}
