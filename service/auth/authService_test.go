package authsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/sumaro2101/EasyLibrary/model"
	"github.com/sumaro2101/EasyLibrary/util/hash"
)

type mockRepo struct {
	createFn     func(ctx context.Context, u *model.User) error
	byEmailFn    func(ctx context.Context, email string) (*model.User, error)
	byIDFn       func(ctx context.Context, id int64) (*model.User, error)
	updateFn     func(ctx context.Context, u *model.User) error
	deactivateFn func(ctx context.Context, id int64) error
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		u.ID = 1
		return nil
	}
	return m.createFn(ctx, u)
}
func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.byEmailFn(ctx, email)
}
func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return m.byIDFn(ctx, id)
}
func (m *mockRepo) Update(ctx context.Context, u *model.User) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, u)
}
func (m *mockRepo) Deactivate(ctx context.Context, id int64) error {
	if m.deactivateFn == nil {
		return nil
	}
	return m.deactivateFn(ctx, id)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := New(m, "test-secret", 24)

	u, tok, err := svc.Register(ctx, model.RegisterReq{
		Username:  "paul",
		FirstName: "Paul",
		LastName:  "Atreides",
		Email:     "  PAUL@Example.COM ",
		Phone:     "+79990001122",
		Password:  "supersecret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "paul@example.com", u.Email)
	require.True(t, u.IsActive)
	require.Equal(t, model.RolePatron, u.Role())
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))
}

func TestRegister_DuplicateMapping(t *testing.T) {
	cases := []struct {
		constraint string
		want       ErrCode
	}{
		{"users_email_key", ErrEmailTaken},
		{"users_username_key", ErrUsernameTaken},
		{"users_phone_key", ErrPhoneTaken},
	}
	for _, tc := range cases {
		m := &mockRepo{
			createFn: func(ctx context.Context, u *model.User) error {
				return &pgconn.PgError{Code: "23505", ConstraintName: tc.constraint}
			},
		}
		svc := New(m, "test-secret", 24)

		_, _, err := svc.Register(context.Background(), model.RegisterReq{
			Email:    "taken@example.com",
			Password: "123456",
		})
		require.Equal(t, tc.want, Code(err), tc.constraint)
	}
}

func TestRegister_CreateError(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return errors.New("db down")
		},
	}
	svc := New(m, "test-secret", 24)

	_, _, err := svc.Register(context.Background(), model.RegisterReq{
		Email:    "ok@example.com",
		Password: "123456",
	})
	require.Error(t, err)
	require.Equal(t, ErrCode(""), Code(err))
}

func TestLogin_Success(t *testing.T) {
	hashed := mustHash(t, "supersecret")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			require.Equal(t, "paul@example.com", email)
			return &model.User{ID: 42, Email: email, PasswordHash: hashed, IsActive: true}, nil
		},
	}
	svc := New(m, "test-secret", 24)

	u, tok, err := svc.Login(context.Background(), model.LoginReq{
		Email:    "PAUL@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(42), u.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	hashed := mustHash(t, "supersecret")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 42, Email: email, PasswordHash: hashed}, nil
		},
	}
	svc := New(m, "test-secret", 24)

	_, _, err := svc.Login(context.Background(), model.LoginReq{
		Email:    "paul@example.com",
		Password: "wrong",
	})
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_UnknownEmail(t *testing.T) {
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, nil
		},
	}
	svc := New(m, "test-secret", 24)

	_, _, err := svc.Login(context.Background(), model.LoginReq{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestUpdate_SelfOrAdminOnly(t *testing.T) {
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, IsActive: true}, nil
		},
	}
	svc := New(m, "test-secret", 24)

	stranger := model.Actor{ID: 99, Role: model.RolePatron}
	_, err := svc.Update(context.Background(), stranger, 42, model.UpdateUserReq{})
	require.Equal(t, ErrForbidden, Code(err))

	name := "Leto"
	self := model.Actor{ID: 42, Role: model.RolePatron}
	u, err := svc.Update(context.Background(), self, 42, model.UpdateUserReq{FirstName: &name})
	require.NoError(t, err)
	require.Equal(t, "Leto", u.FirstName)

	admin := model.Actor{ID: 1, Role: model.RoleAdmin}
	_, err = svc.Update(context.Background(), admin, 42, model.UpdateUserReq{FirstName: &name})
	require.NoError(t, err)
}

func TestDeactivate(t *testing.T) {
	var deactivated int64
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, IsActive: true}, nil
		},
		deactivateFn: func(ctx context.Context, id int64) error {
			deactivated = id
			return nil
		},
	}
	svc := New(m, "test-secret", 24)

	self := model.Actor{ID: 42, Role: model.RolePatron}
	require.NoError(t, svc.Deactivate(context.Background(), self, 42))
	require.Equal(t, int64(42), deactivated)

	stranger := model.Actor{ID: 7, Role: model.RolePatron}
	err := svc.Deactivate(context.Background(), stranger, 42)
	require.Equal(t, ErrForbidden, Code(err))
}

func TestGet_InactiveHidden(t *testing.T) {
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, IsActive: false}, nil
		},
	}
	svc := New(m, "test-secret", 24)

	_, err := svc.Get(context.Background(), 42)
	require.Equal(t, ErrUserNotFound, Code(err))
}
