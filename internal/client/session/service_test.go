package session

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oranmed/candidat/internal/client/credentials"
	"github.com/oranmed/candidat/internal/client/gateway"
	"github.com/oranmed/candidat/internal/client/models"
	"github.com/oranmed/candidat/internal/common"
	"github.com/oranmed/candidat/internal/logging"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupStore(t *testing.T) *credentials.SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE credentials (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)
	return credentials.NewSQLiteStore(db)
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func verifiedUser() *models.User {
	return &models.User{
		ID:            "u-1",
		GivenName:     "Amina",
		FamilyName:    "Benali",
		Email:         "a@x.com",
		Track:         models.TrackMedicine,
		EmailVerified: true,
	}
}

// ---- fake gateway ----

// fakeGateway implements gateway.Client for session unit tests.
type fakeGateway struct {
	RegisterMsg string
	RegisterErr error

	VerifyToken string
	VerifyUser  *models.User
	VerifyMsg   string
	VerifyErr   error

	ResendMsg string
	ResendErr error

	LoginToken string
	LoginUser  *models.User
	LoginMsg   string
	LoginErr   error

	ProfileUser *models.User
	ProfileErr  error

	LastRegister models.RegistrationProfile
	LastVerify   [2]string
	LastLogin    [2]string
	ProfileCalls int
}

func (f *fakeGateway) Register(ctx context.Context, p models.RegistrationProfile) (string, error) {
	f.LastRegister = p
	return f.RegisterMsg, f.RegisterErr
}

func (f *fakeGateway) VerifyEmail(ctx context.Context, email, code string) (string, *models.User, string, error) {
	f.LastVerify = [2]string{email, code}
	return f.VerifyToken, f.VerifyUser, f.VerifyMsg, f.VerifyErr
}

func (f *fakeGateway) ResendVerification(ctx context.Context, email string) (string, error) {
	return f.ResendMsg, f.ResendErr
}

func (f *fakeGateway) Login(ctx context.Context, email, password string) (string, *models.User, string, error) {
	f.LastLogin = [2]string{email, password}
	return f.LoginToken, f.LoginUser, f.LoginMsg, f.LoginErr
}

func (f *fakeGateway) GetProfile(ctx context.Context) (*models.User, error) {
	f.ProfileCalls++
	return f.ProfileUser, f.ProfileErr
}

func (f *fakeGateway) Close() error { return nil }

func newService(t *testing.T, gw *fakeGateway) (*Service, *credentials.SQLiteStore) {
	t.Helper()
	store := setupStore(t)
	return NewService(gw, store, testLogger()), store
}

func sampleProfile() models.RegistrationProfile {
	return models.RegistrationProfile{
		GivenName:  "Amina",
		FamilyName: "Benali",
		Email:      "a@x.com",
		Password:   "secret123",
		Track:      models.TrackMedicine,
		BirthDate:  "2000-01-15",
		Phone:      "+213555000111",
	}
}

// ---- register ----

func TestRegister_Success_AwaitsVerification(t *testing.T) {
	gw := &fakeGateway{RegisterMsg: "check your email"}
	svc, _ := newService(t, gw)
	ctx := context.Background()

	msg, err := svc.Register(ctx, sampleProfile())
	require.NoError(t, err)
	assert.Equal(t, "check your email", msg)
	assert.Equal(t, StateAwaitingVerification, svc.State())
	assert.False(t, svc.IsAuthenticated(), "registration never authenticates")
	assert.Equal(t, "a@x.com", gw.LastRegister.Email)
}

func TestRegister_Rejected_NoStateChange(t *testing.T) {
	gw := &fakeGateway{RegisterErr: &gateway.ServerError{Status: http.StatusBadRequest, Message: "email already registered"}}
	svc, _ := newService(t, gw)

	_, err := svc.Register(context.Background(), sampleProfile())
	require.ErrorIs(t, err, common.ErrRegistrationRejected)
	assert.Contains(t, err.Error(), "email already registered")
	assert.Equal(t, StateAnonymous, svc.State())
}

func TestRegister_NetworkFailure(t *testing.T) {
	gw := &fakeGateway{RegisterErr: gateway.ErrUnavailable}
	svc, _ := newService(t, gw)

	_, err := svc.Register(context.Background(), sampleProfile())
	require.ErrorIs(t, err, common.ErrNetworkFailure)
	assert.Equal(t, StateAnonymous, svc.State())
}

// ---- verify ----

func TestVerifyEmail_Success_Authenticates(t *testing.T) {
	gw := &fakeGateway{VerifyToken: "t1", VerifyUser: verifiedUser(), VerifyMsg: "email verified"}
	svc, store := newService(t, gw)
	ctx := context.Background()

	user, msg, err := svc.VerifyEmail(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "email verified", msg)

	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, StateAuthenticated, svc.State())
	assert.Equal(t, "t1", store.Token())
	require.NotNil(t, user)
	assert.True(t, user.EmailVerified)
	assert.Equal(t, [2]string{"a@x.com", "123456"}, gw.LastVerify)

	// The pair survives a reload.
	token, stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t1", token)
	require.NotNil(t, stored)
	assert.True(t, stored.EmailVerified)
}

func TestVerifyEmail_BadCode_NoStateChange(t *testing.T) {
	gw := &fakeGateway{RegisterMsg: "ok"}
	svc, _ := newService(t, gw)
	ctx := context.Background()

	_, err := svc.Register(ctx, sampleProfile())
	require.NoError(t, err)

	gw.VerifyErr = &gateway.ServerError{Status: http.StatusBadRequest, Message: "invalid code"}
	_, _, err = svc.VerifyEmail(ctx, "a@x.com", "000000")
	require.ErrorIs(t, err, common.ErrVerificationFailed)
	assert.Contains(t, err.Error(), "invalid code")

	assert.Equal(t, StateAwaitingVerification, svc.State(), "falls back to pre-call state")
	assert.False(t, svc.IsAuthenticated())
}

func TestVerifyEmail_MissingToken_IsFailure(t *testing.T) {
	gw := &fakeGateway{VerifyUser: verifiedUser(), VerifyMsg: "ok"}
	svc, _ := newService(t, gw)

	_, _, err := svc.VerifyEmail(context.Background(), "a@x.com", "123456")
	require.ErrorIs(t, err, common.ErrVerificationFailed)
	assert.False(t, svc.IsAuthenticated())
}

// ---- resend ----

func TestResendVerification_NeverChangesState(t *testing.T) {
	gw := &fakeGateway{RegisterMsg: "ok", ResendMsg: "code sent"}
	svc, _ := newService(t, gw)
	ctx := context.Background()

	_, err := svc.Register(ctx, sampleProfile())
	require.NoError(t, err)

	msg, err := svc.ResendVerification(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "code sent", msg)
	assert.Equal(t, StateAwaitingVerification, svc.State())
	assert.False(t, svc.IsAuthenticated())

	gw.ResendErr = &gateway.ServerError{Status: http.StatusBadRequest, Message: "already verified"}
	_, err = svc.ResendVerification(ctx, "a@x.com")
	require.ErrorIs(t, err, common.ErrResendFailed)
	assert.Equal(t, StateAwaitingVerification, svc.State())
	assert.False(t, svc.IsAuthenticated())
}

// ---- login ----

func TestLogin_Success_WithUserInResponse(t *testing.T) {
	gw := &fakeGateway{LoginToken: "t1", LoginUser: verifiedUser(), LoginMsg: "welcome"}
	svc, store := newService(t, gw)

	user, msg, err := svc.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "welcome", msg)
	require.NotNil(t, user)

	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, StateAuthenticated, svc.State())
	assert.Equal(t, "t1", store.Token())
	assert.Zero(t, gw.ProfileCalls, "no extra fetch when the server included the record")
}

func TestLogin_Success_FetchesProfileWhenAbsent(t *testing.T) {
	gw := &fakeGateway{LoginToken: "t1", ProfileUser: verifiedUser()}
	svc, store := newService(t, gw)

	user, _, err := svc.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 1, gw.ProfileCalls)
	assert.Equal(t, "t1", store.Token())
	require.NotNil(t, store.User())
	assert.Equal(t, "a@x.com", store.User().Email)
}

func TestLogin_ProfileRefreshFailure_StillAuthenticated(t *testing.T) {
	gw := &fakeGateway{LoginToken: "t1", ProfileErr: gateway.ErrUnavailable}
	svc, store := newService(t, gw)

	user, _, err := svc.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, "t1", store.Token())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	gw := &fakeGateway{LoginErr: &gateway.ServerError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}}
	svc, _ := newService(t, gw)

	_, _, err := svc.Login(context.Background(), "a@x.com", "wrong")
	require.ErrorIs(t, err, common.ErrAuthenticationFailed)
	assert.Contains(t, err.Error(), "Invalid credentials")

	assert.Equal(t, StateAnonymous, svc.State())
	assert.False(t, svc.IsAuthenticated())
}

func TestLogin_GenericMessageWhenServerGaveNone(t *testing.T) {
	gw := &fakeGateway{LoginErr: &gateway.ServerError{Status: http.StatusUnauthorized}}
	svc, _ := newService(t, gw)

	_, _, err := svc.Login(context.Background(), "a@x.com", "wrong")
	require.ErrorIs(t, err, common.ErrAuthenticationFailed)
	assert.Contains(t, err.Error(), msgLoginFailed)
}

// ---- profile ----

func TestFetchProfile_ExpiredToken_ForcesLogout(t *testing.T) {
	gw := &fakeGateway{VerifyToken: "t1", VerifyUser: verifiedUser()}
	svc, store := newService(t, gw)
	ctx := context.Background()

	_, _, err := svc.VerifyEmail(ctx, "a@x.com", "123456")
	require.NoError(t, err)
	require.True(t, svc.IsAuthenticated())

	gw.ProfileErr = &gateway.ServerError{Status: http.StatusUnauthorized, Message: "token expired"}
	_, err = svc.FetchProfile(ctx)
	require.ErrorIs(t, err, common.ErrSessionExpired)

	assert.False(t, svc.IsAuthenticated())
	assert.Equal(t, StateAnonymous, svc.State())
	assert.Empty(t, store.Token())

	token, _, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "durable store is cleared too")
}

func TestFetchProfile_NetworkFailure_LeavesSessionIntact(t *testing.T) {
	gw := &fakeGateway{VerifyToken: "t1", VerifyUser: verifiedUser()}
	svc, store := newService(t, gw)
	ctx := context.Background()

	_, _, err := svc.VerifyEmail(ctx, "a@x.com", "123456")
	require.NoError(t, err)

	gw.ProfileErr = gateway.ErrUnavailable
	_, err = svc.FetchProfile(ctx)
	require.ErrorIs(t, err, common.ErrProfileUnavailable)

	assert.True(t, svc.IsAuthenticated(), "retriable failure must not downgrade the session")
	assert.Equal(t, StateAuthenticated, svc.State())
	assert.Equal(t, "t1", store.Token())
}

func TestFetchProfile_Success_OverwritesCachedRecord(t *testing.T) {
	gw := &fakeGateway{VerifyToken: "t1", VerifyUser: verifiedUser()}
	svc, store := newService(t, gw)
	ctx := context.Background()

	_, _, err := svc.VerifyEmail(ctx, "a@x.com", "123456")
	require.NoError(t, err)

	refreshed := verifiedUser()
	refreshed.GivenName = "Amina-Updated"
	gw.ProfileUser = refreshed

	user, err := svc.FetchProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Amina-Updated", user.GivenName)
	assert.Equal(t, "Amina-Updated", store.User().GivenName)
	assert.Equal(t, "t1", store.Token(), "token untouched by refresh")
}

// ---- logout / restore ----

func TestLogout_IsIdempotent(t *testing.T) {
	gw := &fakeGateway{VerifyToken: "t1", VerifyUser: verifiedUser()}
	svc, store := newService(t, gw)
	ctx := context.Background()

	_, _, err := svc.VerifyEmail(ctx, "a@x.com", "123456")
	require.NoError(t, err)

	svc.Logout(ctx)
	assert.Equal(t, StateAnonymous, svc.State())
	assert.False(t, svc.IsAuthenticated())
	assert.Empty(t, store.Token())

	svc.Logout(ctx)
	assert.Equal(t, StateAnonymous, svc.State())
	assert.False(t, svc.IsAuthenticated())
}

func TestRestore_WithStoredPair_IsOptimisticallyAuthenticated(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "t1", verifiedUser()))

	svc := NewService(&fakeGateway{}, store, testLogger())
	require.NoError(t, svc.Restore(ctx))

	assert.Equal(t, StateAuthenticated, svc.State())
	assert.True(t, svc.IsAuthenticated())
	require.NotNil(t, svc.CurrentUser())
	assert.Equal(t, "a@x.com", svc.CurrentUser().Email)
}

func TestRestore_FreshStart_StaysAnonymous(t *testing.T) {
	svc, _ := newService(t, &fakeGateway{})
	require.NoError(t, svc.Restore(context.Background()))
	assert.Equal(t, StateAnonymous, svc.State())
	assert.False(t, svc.IsAuthenticated())
}

// ---- notifications ----

func TestSubscribe_ObservesLifecycleTransitions(t *testing.T) {
	gw := &fakeGateway{LoginToken: "t1", LoginUser: verifiedUser()}
	svc, _ := newService(t, gw)

	var seen []State
	svc.Subscribe(func(st State) { seen = append(seen, st) })

	_, _, err := svc.Login(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, []State{StateAuthenticating, StateAuthenticated}, seen)

	svc.Logout(context.Background())
	assert.Equal(t, []State{StateAuthenticating, StateAuthenticated, StateAnonymous}, seen)
}
