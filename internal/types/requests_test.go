//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillClassRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request SkillClassRequest
		wantErr bool
	}{
		{
			name:    "valid request",
			request: SkillClassRequest{University: "UC Berkeley", Skills: []string{"Python", "SQL"}},
		},
		{
			name:    "missing university",
			request: SkillClassRequest{Skills: []string{"Python"}},
			wantErr: true,
		},
		{
			name:    "nil skills",
			request: SkillClassRequest{University: "UC Berkeley"},
			wantErr: true,
		},
		{
			name:    "empty skills",
			request: SkillClassRequest{University: "UC Berkeley", Skills: []string{}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateSessionRequest_Validate(t *testing.T) {
	assert.NoError(t, (&CreateSessionRequest{Name: "Ada", School: "MIT"}).Validate())
	assert.Error(t, (&CreateSessionRequest{Name: "Ada"}).Validate())
	assert.Error(t, (&CreateSessionRequest{School: "MIT"}).Validate())
}

func TestLayoutRequest_Validate(t *testing.T) {
	assert.NoError(t, (&LayoutRequest{}).Validate(), "zero container size means default")
	assert.NoError(t, (&LayoutRequest{ContainerSize: 800}).Validate())
	assert.Error(t, (&LayoutRequest{ContainerSize: 10}).Validate())
	assert.Error(t, (&LayoutRequest{ContainerSize: 20000}).Validate())
}

func TestPersonData_EffectiveRank(t *testing.T) {
	assert.Equal(t, 4, PersonData{Rank: 4}.EffectiveRank(0))
	assert.Equal(t, 3, PersonData{}.EffectiveRank(2))
}

func TestPersonData_WireFormat(t *testing.T) {
	raw := `{"name":"Sarah Johnson","current_company":"Tech Corp","current_role":"Engineer","can_offer":["mentoring"],"rank":1}`

	var p PersonData
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, "Sarah Johnson", p.Name)
	assert.Equal(t, "Tech Corp", p.CurrentCompany)
	assert.Equal(t, "Engineer", p.CurrentRole)
	assert.Equal(t, []string{"mentoring"}, p.CanOffer)
	assert.Equal(t, 1, p.Rank)
}

func TestProfile_OptionalNumbers(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{"profileId":"p1","yearsExperience":0}`), &p))
	require.NotNil(t, p.YearsExperience)
	assert.Equal(t, 0, *p.YearsExperience)
	assert.Nil(t, p.Connections)
}
