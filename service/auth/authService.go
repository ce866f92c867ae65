package authsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lena-biju/library-managment/model"
	userrepo "github.com/lena-biju/library-managment/repository/user"
	"github.com/lena-biju/library-managment/util/hash"
	jwtutil "github.com/lena-biju/library-managment/util/jwt"
)

var (
	ErrPhoneTaken   = errors.New("phone already registered")
	ErrEmailTaken   = errors.New("email already registered")
	ErrBadInput     = errors.New("bad input")
	ErrInvalidCreds = errors.New("invalid credentials")
	ErrForbidden    = errors.New("librarian role required")
	ErrNotFound     = errors.New("user not found")
)

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)

	// SetRole / SetPlan are librarian-only administrative mutations;
	// actorRole is the caller's role claim.
	SetRole(ctx context.Context, actorRole model.Role, userID int64, role model.Role) error
	SetPlan(ctx context.Context, actorRole model.Role, userID int64, plan model.Plan) error
}

type service struct {
	ur     userrepo.Repo
	secret string
}

func New(ur userrepo.Repo, secret string) Service { return &service{ur: ur, secret: secret} }

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	plan := req.Plan
	if plan == "" {
		plan = model.PlanNone
	}
	if !plan.Valid() {
		return nil, "", ErrBadInput
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Name:         req.Name,
		Phone:        strings.TrimSpace(req.Phone),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashed,
		Role:         model.RoleNormal, // every registrant starts as normal
		Plan:         plan,
	}

	if err := s.ur.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, "", derr
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		cn := strings.ToLower(pgErr.ConstraintName)
		msg := strings.ToLower(pgErr.Message)

		if strings.Contains(cn, "users_phone") || strings.Contains(msg, "phone") {
			return ErrPhoneTaken
		}
		if strings.Contains(cn, "users_email") || strings.Contains(msg, "email") {
			return ErrEmailTaken
		}
		return ErrBadInput
	}
	return nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	u, err := s.ur.ByPhone(ctx, strings.TrimSpace(req.Phone))
	if err != nil {
		return nil, "", ErrInvalidCreds
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCreds
	}
	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) SetRole(ctx context.Context, actorRole model.Role, userID int64, role model.Role) error {
	if actorRole != model.RoleLibrarian {
		return ErrForbidden
	}
	if !role.Valid() {
		return ErrBadInput
	}
	if err := s.ur.SetRole(ctx, userID, role); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *service) SetPlan(ctx context.Context, actorRole model.Role, userID int64, plan model.Plan) error {
	if actorRole != model.RoleLibrarian {
		return ErrForbidden
	}
	if !plan.Valid() {
		return ErrBadInput
	}
	if err := s.ur.SetPlan(ctx, userID, plan); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
