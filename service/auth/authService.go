package authsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sumaro2101/EasyLibrary/model"
	"github.com/sumaro2101/EasyLibrary/util/hash"
	jwtutil "github.com/sumaro2101/EasyLibrary/util/jwt"
)

type ErrCode string

const (
	ErrEmailTaken    ErrCode = "EMAIL_TAKEN"
	ErrUsernameTaken ErrCode = "USERNAME_TAKEN"
	ErrPhoneTaken    ErrCode = "PHONE_TAKEN"
	ErrInvalidCreds  ErrCode = "INVALID_CREDENTIALS"
	ErrUserNotFound  ErrCode = "USER_NOT_FOUND"
	ErrForbidden     ErrCode = "FORBIDDEN"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, u *model.User) error
	Deactivate(ctx context.Context, id int64) error
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)

	Get(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, actor model.Actor, id int64, req model.UpdateUserReq) (*model.User, error)
	Deactivate(ctx context.Context, actor model.Actor, id int64) error
}

type service struct {
	r        Repo
	secret   string
	ttlHours int
}

func New(r Repo, secret string, ttlHours int) Service {
	return &service{r: r, secret: secret, ttlHours: ttlHours}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Username:     strings.TrimSpace(req.Username),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hashed,
		IsActive:     true,
	}
	if err := s.r.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, "", derr
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.ID, u.Email, string(u.Role()), s.ttlHours)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		cn := strings.ToLower(pgErr.ConstraintName)
		switch {
		case strings.Contains(cn, "email"):
			return makeErr(ErrEmailTaken)
		case strings.Contains(cn, "username"):
			return makeErr(ErrUsernameTaken)
		case strings.Contains(cn, "phone"):
			return makeErr(ErrPhoneTaken)
		}
		return makeErr(ErrEmailTaken)
	}
	return nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	u, err := s.r.ByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, "", err
	}
	if u == nil || !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", makeErr(ErrInvalidCreds)
	}
	token, err := jwtutil.Issue(s.secret, u.ID, u.Email, string(u.Role()), s.ttlHours)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, makeErr(ErrUserNotFound)
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, actor model.Actor, id int64, req model.UpdateUserReq) (*model.User, error) {
	if actor.ID != id && actor.Role != model.RoleAdmin {
		return nil, makeErr(ErrForbidden)
	}
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrUserNotFound)
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Password != nil {
		hashed, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hashed
	}
	if err := s.r.Update(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, derr
		}
		return nil, err
	}
	return u, nil
}

func (s *service) Deactivate(ctx context.Context, actor model.Actor, id int64) error {
	if actor.ID != id && actor.Role != model.RoleAdmin {
		return makeErr(ErrForbidden)
	}
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return makeErr(ErrUserNotFound)
	}
	return s.r.Deactivate(ctx, id)
}
