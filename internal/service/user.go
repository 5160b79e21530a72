package service

import (
	"context"
	"net/mail"
	"slices"
	"strings"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/store"
)

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// UserService - вход, выход и регистрация. Пароли не проверяются.
type UserService struct {
	store *store.Store
	env   env
}

func NewUserService(st *store.Store, opts ...Option) *UserService {
	return &UserService{store: st, env: newEnv(opts)}
}

func (s *UserService) List(ctx context.Context) []model.User {
	users := s.store.State().Users
	if users == nil {
		return []model.User{}
	}
	return users
}

func (s *UserService) Current(ctx context.Context) (model.User, error) {
	return currentUser(s.store.State())
}

// Login ищет пользователя по имени, email или id
func (s *UserService) Login(ctx context.Context, login string) (model.User, error) {
	login = strings.TrimSpace(login)

	var user model.User
	_, err := s.store.Update(ctx, func(st store.State) ([]store.Command, error) {
		if login == "" {
			return nil, invalid("Username or email is required")
		}
		for _, u := range st.Users {
			if u.ID == login || strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login) {
				user = u
				return []store.Command{store.SetCurrentUser(u)}, nil
			}
		}
		return nil, ErrNotFound
	})
	return user, err
}

func (s *UserService) Logout(ctx context.Context) {
	s.store.Dispatch(ctx, store.Logout())
}

// Register добавляет пользователя и сразу выполняет вход
func (s *UserService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	var user model.User
	_, err := s.store.Update(ctx, func(st store.State) ([]store.Command, error) {
		var problems []string
		if in.Username == "" {
			problems = append(problems, "Username is required")
		}
		if in.Email == "" {
			problems = append(problems, "Email is required")
		} else if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
			problems = append(problems, "Email is invalid")
		}
		for _, u := range st.Users {
			if in.Username != "" && strings.EqualFold(u.Username, in.Username) {
				problems = append(problems, "Username is already taken")
			}
			if in.Email != "" && strings.EqualFold(u.Email, in.Email) {
				problems = append(problems, "Email is already registered")
			}
		}
		if len(problems) > 0 {
			return nil, invalid(problems...)
		}

		user = model.User{
			ID:       s.env.newID(),
			Username: in.Username,
			Email:    in.Email,
			Avatar:   in.Avatar,
			Color:    model.Palette[len(st.Users)%len(model.Palette)],
		}
		users := append(slices.Clone(st.Users), user)
		return []store.Command{store.SetUsers(users), store.SetCurrentUser(user)}, nil
	})
	return user, err
}
