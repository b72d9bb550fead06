package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillOwnerRepo(t *testing.T) {
	testCases := []struct {
		fullName string
		owner    string
		repo     string
		ok       bool
	}{
		{fullName: "anthropics/skills", owner: "anthropics", repo: "skills", ok: true},
		{fullName: "noslash", ok: false},
		{fullName: "/repo", ok: false},
		{fullName: "owner/", ok: false},
		{fullName: "a/b/c", ok: false},
		{fullName: "", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.fullName, func(t *testing.T) {
			owner, repo, ok := Skill{FullName: tc.fullName}.OwnerRepo()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.owner, owner)
			assert.Equal(t, tc.repo, repo)
		})
	}
}

func TestSkillDecodeWithMissingOptionalFields(t *testing.T) {
	raw := `{"id":7,"repo_id":99,"full_name":"acme/tool","html_url":"https://github.com/acme/tool",
		"stars":-3,"forks":2,"description":null,"topics":null,"last_pushed_at":null,
		"fetched_at":"2026-01-02T03:04:05Z"}`

	var s Skill
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	require.NoError(t, s.Validate())

	assert.Equal(t, "tool", s.Name)
	assert.Equal(t, 0, s.Stars)
	assert.Equal(t, "", s.Description)
	assert.True(t, s.LastPushedAt.IsZero())
	assert.Equal(t, 2026, s.FetchedAt.Year())
	assert.Empty(t, s.KeyFeaturesEn)
}

func TestSkillValidateRequired(t *testing.T) {
	s := Skill{FullName: "acme", HTMLURL: "https://github.com/acme"}
	assert.ErrorIs(t, s.Validate(), ErrInvalidSkill)
}

func TestSkillValidateDerivesHTMLURL(t *testing.T) {
	s := Skill{FullName: "acme/tool"}
	require.NoError(t, s.Validate())
	assert.Equal(t, "https://github.com/acme/tool", s.HTMLURL)

	s = Skill{FullName: "acme/tool", HTMLURL: "https://example.com/mirror"}
	require.NoError(t, s.Validate())
	assert.Equal(t, "https://example.com/mirror", s.HTMLURL)
}

func TestTimestampDecoding(t *testing.T) {
	testCases := []struct {
		raw  string
		want time.Time
	}{
		{raw: `"2026-01-02T03:04:05Z"`, want: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{raw: `"2026-01-02T03:04:05+08:00"`, want: time.Date(2026, 1, 1, 19, 4, 5, 0, time.UTC)},
		{raw: `"2026-01-02T03:04:05.123456"`, want: time.Date(2026, 1, 2, 3, 4, 5, 123456000, time.UTC)},
		{raw: `"2026-01-02 03:04:05"`, want: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{raw: `"2026-01-02"`, want: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
		{raw: `null`},
		{raw: `""`},
		{raw: `"soon"`},
		{raw: `1700000000`},
		{raw: `{"t":1}`},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &ts))
			if tc.want.IsZero() {
				assert.True(t, ts.IsZero())
				return
			}
			assert.True(t, tc.want.Equal(ts.Time), ts.Time.String())
		})
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	in := Skill{FullName: "a/b", LastPushedAt: Timestamp{Time: time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)}}
	encoded, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"last_pushed_at":"2026-05-06T07:08:09Z"`)
	assert.Contains(t, string(encoded), `"fetched_at":null`)

	var out Skill
	require.NoError(t, json.Unmarshal(encoded, &out))
	assert.True(t, in.LastPushedAt.Equal(out.LastPushedAt.Time))
	assert.True(t, out.FetchedAt.IsZero())
}

func TestSkillListSanitize(t *testing.T) {
	resp := SkillListResponse{
		Total: 1,
		Items: []Skill{
			{FullName: "a/b", HTMLURL: "https://github.com/a/b"},
			{FullName: "broken"},
			{FullName: "c/d", HTMLURL: "https://github.com/c/d"},
		},
	}

	dropped := resp.Sanitize()
	assert.Equal(t, 1, dropped)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.Total)

	empty := SkillListResponse{}
	empty.Sanitize()
	assert.NotNil(t, empty.Items)
}

func TestFacetListSanitize(t *testing.T) {
	list := FacetList{Items: []FacetItem{
		{Value: " python ", Count: 3},
		{Value: "", Count: 10},
		{Value: "go", Count: -1},
	}}
	list.Sanitize()

	assert.Equal(t, []FacetItem{{Value: "python", Count: 3}, {Value: "go", Count: 0}}, list.Items)
	assert.True(t, FacetOwners.Valid())
	assert.False(t, FacetKind("stars").Valid())
}
