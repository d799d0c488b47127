package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
	"github.com/trajectory-hub/student-dashboard/internal/domain/trajectory"
	"github.com/trajectory-hub/student-dashboard/internal/testutil/fakebackend"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, fb *fakebackend.Server, token string) *Client {
	t.Helper()
	return NewClient(DefaultClientConfig(fb.URL), staticToken(token))
}

func TestClient_LoginSendsForm(t *testing.T) {
	fb := fakebackend.New(t)
	fb.AddUser("a@b.com", "pw", "student")
	c := newTestClient(t, fb, "")

	token, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	reqs := fb.RequestsTo(PathLogin)
	require.Len(t, reqs, 1)
	assert.Equal(t, "application/x-www-form-urlencoded", reqs[0].ContentType)
	form, err := url.ParseQuery(reqs[0].Body)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", form.Get("username"))
	assert.Equal(t, "pw", form.Get("password"))
	assert.Empty(t, reqs[0].Authorization, "no token, no header")
	assert.NotEmpty(t, reqs[0].RequestID)
}

func TestClient_LoginBadCredentials(t *testing.T) {
	fb := fakebackend.New(t)
	fb.AddUser("a@b.com", "pw", "student")
	c := newTestClient(t, fb, "")

	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.True(t, shared.IsAuthFailure(err))
	assert.Equal(t, "Incorrect email or password", shared.DetailOf(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestClient_RegisterDefaultsRole(t *testing.T) {
	fb := fakebackend.New(t)
	c := newTestClient(t, fb, "")

	token, err := c.Register(context.Background(), "new@b.com", "pw", "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	reqs := fb.RequestsTo(PathRegister)
	require.Len(t, reqs, 1)
	assert.Equal(t, "application/json", reqs[0].ContentType)
	assert.JSONEq(t, `{"email":"new@b.com","password":"pw","role":"student"}`, reqs[0].Body)

	_, err = c.Register(context.Background(), "new@b.com", "pw", session.RoleStudent)
	require.Error(t, err)
	assert.False(t, shared.IsAuthFailure(err))
	assert.ErrorIs(t, err, shared.ErrExternalService)
	assert.Equal(t, "Email already registered", shared.DetailOf(err))
}

func TestClient_MeUsesExplicitToken(t *testing.T) {
	fb := fakebackend.New(t)
	id := fb.AddUser("a@b.com", "pw", "student")
	token := fb.TokenFor("a@b.com", time.Hour)

	// Session token is stale; the explicit one must win.
	c := newTestClient(t, fb, "stale")
	user, err := c.Me(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, session.User{ID: id, Email: "a@b.com", Role: session.RoleStudent}, user)

	reqs := fb.RequestsTo(PathMe)
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+token, reqs[0].Authorization)
}

func TestClient_MeExpiredToken(t *testing.T) {
	fb := fakebackend.New(t)
	fb.AddUser("a@b.com", "pw", "student")
	expired := fb.TokenFor("a@b.com", -time.Minute)

	_, err := newTestClient(t, fb, "").Me(context.Background(), expired)
	assert.True(t, shared.IsAuthFailure(err))
}

func TestClient_Resources(t *testing.T) {
	fb := fakebackend.New(t)
	fb.AddUser("a@b.com", "pw", "student")
	token := fb.TokenFor("a@b.com", time.Hour)
	c := newTestClient(t, fb, token)
	ctx := context.Background()

	profile, err := c.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", profile.Name)
	require.NotNil(t, profile.GPA)
	assert.InDelta(t, 3.46, *profile.GPA, 1e-9)

	records, err := c.GetBehavioral(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2024-03-03", records[0].Date.Format("2006-01-02"))
	assert.Nil(t, records[1].FocusScore)
	assert.Equal(t, "days=7", fb.RequestsTo(PathBehavioral)[0].RawQuery)

	skills, err := c.GetSkills(ctx)
	require.NoError(t, err)
	require.Len(t, skills, 3)
	assert.Equal(t, "Python", skills[0].SkillName)

	prediction, err := c.GetPrediction(ctx)
	require.NoError(t, err)
	assert.Equal(t, trajectory.TrendImproving, prediction.Trend)
	assert.Len(t, prediction.SimilarAlumni, 4)
	predictReqs := fb.RequestsTo(PathPredict)
	require.Len(t, predictReqs, 1)
	assert.Equal(t, http.MethodPost, predictReqs[0].Method)
	assert.JSONEq(t, `{}`, predictReqs[0].Body)

	insights, err := c.GetInsights(ctx)
	require.NoError(t, err)
	assert.Equal(t, trajectory.StatusPoor, insights.Comparison.ScreenTime.Status)
	assert.Equal(t, trajectory.StatusFair, insights.Comparison.Sleep.Status)
	assert.Equal(t, trajectory.Range{Min: 4, Max: 6}, insights.Correlations.OptimalScreenTime)

	cmp, err := c.GetAlumniComparison(ctx)
	require.NoError(t, err)
	assert.Equal(t, trajectory.StatusPoor, cmp.OverallStatus)

	for _, r := range fb.Requests() {
		assert.Equal(t, "Bearer "+token, r.Authorization, r.Path)
	}
}

func TestClient_MalformedResponses(t *testing.T) {
	fb := fakebackend.New(t)
	fb.AddUser("a@b.com", "pw", "student")
	c := newTestClient(t, fb, fb.TokenFor("a@b.com", time.Hour))
	ctx := context.Background()

	fb.Behavioral = []map[string]any{{"date": "not-a-date"}}
	_, err := c.GetBehavioral(ctx, 7)
	assert.ErrorIs(t, err, shared.ErrMalformedResponse)
	assert.True(t, shared.IsNetworkFailure(err))

	fb.Prediction = map[string]any{"trajectory_score": 50}
	_, err = c.GetPrediction(ctx)
	assert.ErrorIs(t, err, shared.ErrMalformedResponse)

	fb.Insights = map[string]any{
		"comparison": map[string]any{
			"screen_time": map[string]any{"student": 9.0, "optimal": 5.0, "status": "poor"},
		},
		"recommendations": []string{},
	}
	_, err = c.GetInsights(ctx)
	assert.ErrorIs(t, err, shared.ErrMalformedResponse)
}

func TestClient_InsightsWithoutBehavioralData(t *testing.T) {
	fb := fakebackend.New(t)
	fb.AddUser("a@b.com", "pw", "student")
	c := newTestClient(t, fb, fb.TokenFor("a@b.com", time.Hour))

	fb.Insights = map[string]any{
		"correlations":    map[string]any{"sample_size": 0},
		"at_risk_flags":   []map[string]any{},
		"comparison":      map[string]any{},
		"recommendations": []string{"Keep tracking your habits."},
	}

	insights, err := c.GetInsights(context.Background())
	require.NoError(t, err)
	assert.True(t, insights.Comparison.Empty)
	assert.Zero(t, insights.Comparison.ScreenTime)
	assert.Equal(t, []string{"Keep tracking your habits."}, insights.Recommendations)
}

func TestClient_ErrorEnvelopes(t *testing.T) {
	fb := fakebackend.New(t)
	fb.AddUser("a@b.com", "pw", "student")
	c := newTestClient(t, fb, fb.TokenFor("a@b.com", time.Hour))

	fb.Fail(PathInsights, http.StatusInternalServerError, "Insights unavailable")
	_, err := c.GetInsights(context.Background())
	assert.ErrorIs(t, err, shared.ErrExternalService)
	assert.Equal(t, "Insights unavailable", shared.DetailOf(err))

	fb.FailRaw(PathSkills, http.StatusUnprocessableEntity,
		`{"detail":[{"loc":["query","days"],"msg":"field required"},{"msg":"value too large"}]}`)
	_, err = c.GetSkills(context.Background())
	assert.Equal(t, "field required; value too large", shared.DetailOf(err))

	fb.FailRaw(PathProfile, http.StatusBadGateway, `<html>bad gateway</html>`)
	_, err = c.GetProfile(context.Background())
	assert.ErrorIs(t, err, shared.ErrExternalService)
	assert.Empty(t, shared.DetailOf(err))
}

func TestClient_NetworkFailure(t *testing.T) {
	fb := fakebackend.New(t)
	baseURL := fb.URL
	fb.Close()

	c := NewClient(DefaultClientConfig(baseURL), nil)
	_, err := c.GetProfile(context.Background())
	assert.ErrorIs(t, err, shared.ErrNetworkFailure)
	assert.False(t, c.IsHealthy(context.Background()))
}

func TestClient_Timeout(t *testing.T) {
	fb := fakebackend.New(t)
	fb.Delay(PathProfile, 200*time.Millisecond)

	cfg := DefaultClientConfig(fb.URL)
	cfg.Timeout = 20 * time.Millisecond
	_, err := NewClient(cfg, staticToken("x")).GetProfile(context.Background())
	assert.ErrorIs(t, err, shared.ErrNetworkFailure)
}

func TestExtractDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string", `{"detail":"nope"}`, "nope"},
		{"list", `{"detail":[{"msg":"a"},{"msg":"b"}]}`, "a; b"},
		{"missing", `{"error":"x"}`, ""},
		{"invalid", `oops`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDetail([]byte(tt.body)))
		})
	}
}
