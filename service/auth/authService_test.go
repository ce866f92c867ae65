package authsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/lena-biju/library-managment/model"
	userrepo "github.com/lena-biju/library-managment/repository/user"
	"github.com/lena-biju/library-managment/util/hash"
)

type mockRepo struct {
	createFn  func(ctx context.Context, u *model.User) error
	byPhoneFn func(ctx context.Context, phone string) (*model.User, error)
	byIDFn    func(ctx context.Context, id int64) (*model.User, error)
	setRoleFn func(ctx context.Context, id int64, role model.Role) error
	setPlanFn func(ctx context.Context, id int64, plan model.Plan) error
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}
func (m *mockRepo) ByPhone(ctx context.Context, phone string) (*model.User, error) {
	if m.byPhoneFn == nil {
		return nil, userrepo.ErrNotFound
	}
	return m.byPhoneFn(ctx, phone)
}
func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, userrepo.ErrNotFound
	}
	return m.byIDFn(ctx, id)
}
func (m *mockRepo) SetRole(ctx context.Context, id int64, role model.Role) error {
	if m.setRoleFn == nil {
		return nil
	}
	return m.setRoleFn(ctx, id, role)
}
func (m *mockRepo) SetPlan(ctx context.Context, id int64, plan model.Plan) error {
	if m.setPlanFn == nil {
		return nil
	}
	return m.setPlanFn(ctx, id, plan)
}
func (m *mockRepo) EnsureLibrarian(ctx context.Context, u *model.User) error { return nil }

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraint}
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := New(m, "test-secret")

	req := model.RegisterReq{
		Name:     "Lena Biju",
		Phone:    "5550001111",
		Email:    "USER@Example.COM",
		Password: "supersecret",
		Plan:     model.PlanNormal,
	}

	u, tok, err := svc.Register(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.Equal(t, model.RoleNormal, u.Role)
	require.Equal(t, model.PlanNormal, u.Plan)
	require.NotEqual(t, "supersecret", u.PasswordHash)
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))
}

func TestRegister_DefaultsToNoPlan(t *testing.T) {
	m := &mockRepo{createFn: func(ctx context.Context, u *model.User) error { return nil }}
	svc := New(m, "test-secret")

	u, _, err := svc.Register(context.Background(), model.RegisterReq{
		Name: "x", Phone: "5550002222", Email: "a@b.c", Password: "123456",
	})
	require.NoError(t, err)
	require.Equal(t, model.PlanNone, u.Plan)
}

func TestRegister_PhoneTaken(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return uniqueViolation("users_phone_key")
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(context.Background(), model.RegisterReq{
		Name: "x", Phone: "5550001111", Email: "a@b.c", Password: "123456",
	})
	require.ErrorIs(t, err, ErrPhoneTaken)
}

func TestRegister_EmailTaken(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return uniqueViolation("users_email_key")
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(context.Background(), model.RegisterReq{
		Name: "x", Phone: "5550003333", Email: "a@b.c", Password: "123456",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_InvalidPlan(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret")
	_, _, err := svc.Register(context.Background(), model.RegisterReq{
		Name: "x", Phone: "5550004444", Email: "a@b.c", Password: "123456", Plan: "gold",
	})
	require.ErrorIs(t, err, ErrBadInput)
}

func TestLogin(t *testing.T) {
	hashed, err := hash.HashPassword("correct horse")
	require.NoError(t, err)

	stored := &model.User{ID: 7, Phone: "5550001111", PasswordHash: hashed, Role: model.RoleNormal}
	m := &mockRepo{
		byPhoneFn: func(ctx context.Context, phone string) (*model.User, error) {
			if phone == "5550001111" {
				return stored, nil
			}
			return nil, userrepo.ErrNotFound
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Login(context.Background(), model.LoginReq{Phone: "5550001111", Password: "correct horse"})
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.NotEmpty(t, tok)

	_, _, err = svc.Login(context.Background(), model.LoginReq{Phone: "5550001111", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCreds)

	_, _, err = svc.Login(context.Background(), model.LoginReq{Phone: "5559999999", Password: "correct horse"})
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestSetRole_LibrarianOnly(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret")

	err := svc.SetRole(context.Background(), model.RoleNormal, 1, model.RoleLibrarian)
	require.ErrorIs(t, err, ErrForbidden)

	err = svc.SetRole(context.Background(), model.RoleLibrarian, 1, model.RoleLibrarian)
	require.NoError(t, err)

	err = svc.SetRole(context.Background(), model.RoleLibrarian, 1, "superuser")
	require.ErrorIs(t, err, ErrBadInput)
}

func TestSetPlan_MapsNotFound(t *testing.T) {
	m := &mockRepo{
		setPlanFn: func(ctx context.Context, id int64, plan model.Plan) error {
			return userrepo.ErrNotFound
		},
	}
	svc := New(m, "test-secret")

	err := svc.SetPlan(context.Background(), model.RoleLibrarian, 99, model.PlanPremium)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMapDuplicateErr_NonPgError(t *testing.T) {
	require.NoError(t, mapDuplicateErr(errors.New("connection refused")))
}
