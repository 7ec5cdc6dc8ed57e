package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"mediagate/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeAdmins struct {
	byName map[string]*model.AdminUser
	err    error
}

func (f *fakeAdmins) GetByUsername(_ context.Context, username string) (*model.AdminUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byName[username], nil
}

func (f *fakeAdmins) GetByAdminCode(_ context.Context, code string) (*model.AdminUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.byName {
		if a.AdminCode != nil && *a.AdminCode == code {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAdmins) Create(_ context.Context, a *model.AdminUser) (int64, error) {
	f.byName[a.Username] = a
	return a.ID, nil
}

type fakeUsers struct {
	byCode map[string]*model.User
}

func (f *fakeUsers) GetByCode(_ context.Context, code string) (*model.User, error) {
	return f.byCode[code], nil
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) (int64, error) {
	f.byCode[u.Code] = u
	return u.ID, nil
}

func newTestService(t *testing.T) (*Service, *TokenIssuer) {
	t.Helper()
	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	code := "424242"
	admins := &fakeAdmins{byName: map[string]*model.AdminUser{
		"root": {ID: 1, Username: "root", PasswordHash: hash, AdminCode: &code},
	}}
	users := &fakeUsers{byCode: map[string]*model.User{
		"123456": {ID: 10, Code: "123456", IsAdmin: false},
		"555555": {ID: 11, Code: "555555", IsAdmin: true},
	}}
	issuer := NewTokenIssuer("test-secret")
	return NewService(admins, users, issuer), issuer
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)
	require.True(t, CheckPasswordHash("secret", hash))
	require.False(t, CheckPasswordHash("Secret", hash))
	require.False(t, CheckPasswordHash("secret", "not-a-hash"))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost, cost)
}

func TestPasswordHashCost(t *testing.T) {
	_, err := HashPassword("secret", bcrypt.MaxCost+1)
	require.Error(t, err)
	_, err = HashPassword("secret", 1)
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("k")
	for _, claims := range []Claims{AdminClaims(3, "ops"), UserClaims(9, false), UserClaims(12, true)} {
		token, err := issuer.Issue(claims, time.Hour)
		require.NoError(t, err)

		got, err := issuer.Parse(token)
		require.NoError(t, err)
		require.Equal(t, claims.AdminID, got.AdminID)
		require.Equal(t, claims.UserID, got.UserID)
		require.Equal(t, claims.Username, got.Username)
		require.Equal(t, claims.IsAdmin, got.IsAdmin)
		require.Equal(t, claims.Subject, got.Subject)
		require.NotNil(t, got.ExpiresAt)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("k")
	start := time.Now()
	issuer.now = func() time.Time { return start }
	token, err := issuer.Issue(UserClaims(1, false), time.Minute)
	require.NoError(t, err)

	issuer.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = issuer.Parse(token)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestTamperedTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("k")
	token, err := issuer.Issue(UserClaims(1, false), time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// swap the payload for one claiming admin rights, keep the old signature
	forged, err := NewTokenIssuer("other").Issue(UserClaims(1, true), time.Hour)
	require.NoError(t, err)
	tampered := parts[0] + "." + strings.Split(forged, ".")[1] + "." + parts[2]
	_, err = issuer.Parse(tampered)
	require.ErrorIs(t, err, ErrUnauthorized)

	// wrong key
	_, err = issuer.Parse(forged)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = issuer.Parse("garbage")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestUnsignedTokenRejected(t *testing.T) {
	claims := UserClaims(1, true)
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer("k").Parse(none)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenWithoutExpiryRejected(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims(1, false)).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = NewTokenIssuer("k").Parse(raw)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginAdmin(t *testing.T) {
	svc, issuer := newTestService(t)
	ctx := context.Background()

	token, err := svc.LoginAdmin(ctx, "root", "hunter2")
	require.NoError(t, err)
	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, int64(1), claims.AdminID)
	require.Equal(t, "root", claims.Username)
	require.True(t, claims.IsAdmin)
	require.WithinDuration(t, time.Now().Add(AdminTokenTTL), claims.ExpiresAt.Time, time.Minute)

	_, err = svc.LoginAdmin(ctx, "root", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.LoginAdmin(ctx, "ghost", "hunter2")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyAdminCode(t *testing.T) {
	svc, issuer := newTestService(t)

	res, err := svc.VerifyCode(context.Background(), "424242")
	require.NoError(t, err)
	require.True(t, res.IsAdmin)

	claims, err := issuer.Parse(res.Token)
	require.NoError(t, err)
	require.Equal(t, int64(1), claims.AdminID)
	require.Equal(t, "root", claims.Username)
	require.True(t, claims.IsAdmin)
	require.WithinDuration(t, time.Now().Add(AdminTokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyRegularCodes(t *testing.T) {
	svc, issuer := newTestService(t)

	for code, wantAdmin := range map[string]bool{"123456": false, "555555": true} {
		t.Run(code, func(t *testing.T) {
			res, err := svc.VerifyCode(context.Background(), code)
			require.NoError(t, err)
			require.Equal(t, wantAdmin, res.IsAdmin)

			claims, err := issuer.Parse(res.Token)
			require.NoError(t, err)
			require.Equal(t, wantAdmin, claims.IsAdmin)
			require.NotZero(t, claims.UserID)
			require.Zero(t, claims.AdminID)
			require.WithinDuration(t, time.Now().Add(UserTokenTTL), claims.ExpiresAt.Time, time.Minute)
		})
	}
}

func TestVerifyUnknownCode(t *testing.T) {
	svc, _ := newTestService(t)
	for _, code := range []string{"999999", "", "42424"} {
		res, err := svc.VerifyCode(context.Background(), code)
		require.ErrorIs(t, err, ErrInvalidCode, code)
		require.Nil(t, res)
	}
}

func TestResolveCodeRepositoryError(t *testing.T) {
	boom := errors.New("db down")
	_, _, err := ResolveCode(context.Background(), &fakeAdmins{err: boom}, &fakeUsers{}, "123456")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrInvalidCode)
}

func TestResolveCodeAdminWins(t *testing.T) {
	code := "111111"
	admins := &fakeAdmins{byName: map[string]*model.AdminUser{"a": {ID: 5, Username: "a", AdminCode: &code}}}
	users := &fakeUsers{byCode: map[string]*model.User{code: {ID: 6, Code: code}}}

	claims, ttl, err := ResolveCode(context.Background(), admins, users, code)
	require.NoError(t, err)
	require.Equal(t, AdminTokenTTL, ttl)
	require.Equal(t, int64(5), claims.AdminID)
	require.Equal(t, fmt.Sprintf("admin:%d", 5), claims.Subject)
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	require.False(t, ok)

	c := UserClaims(1, false)
	got, ok := ClaimsFromContext(ContextWithClaims(context.Background(), &c))
	require.True(t, ok)
	require.Equal(t, int64(1), got.UserID)
}
