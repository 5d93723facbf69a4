package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/kaldeqca/sex-sim-ai/internal/locale"
	"github.com/kaldeqca/sex-sim-ai/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, doc string) *types.ParsedRecord {
	t.Helper()
	var r types.ParsedRecord
	require.NoError(t, json.Unmarshal([]byte(doc), &r))
	return &r
}

func TestValidateContent(t *testing.T) {
	en := locale.MustPreset("en")
	zh := locale.MustPreset("zh")

	tests := []struct {
		name      string
		doc       string
		mode      types.Mode
		profile   *locale.Profile
		wantField string
		wantGot   int
	}{
		{
			name:    "classic option long enough",
			doc:     `{"mainText":"x","options":{"option3":"walk away slowly"}}`,
			mode:    types.ModeClassic,
			profile: en,
		},
		{
			name:      "classic option too short",
			doc:       `{"mainText":"x","options":{"option3":"leave"}}`,
			mode:      types.ModeClassic,
			profile:   en,
			wantField: "options.option3",
			wantGot:   1,
		},
		{
			name:    "classic option absent is exempt",
			doc:     `{"mainText":"x","options":{"option1":"a"}}`,
			mode:    types.ModeClassic,
			profile: en,
		},
		{
			name:    "empty value is exempt",
			doc:     `{"mainText":"x","options":{"option3":""}}`,
			mode:    types.ModeClassic,
			profile: en,
		},
		{
			name:      "whitespace value counts as zero",
			doc:       `{"mainText":"x","options":{"option3":"   "}}`,
			mode:      types.ModeClassic,
			profile:   en,
			wantField: "options.option3",
			wantGot:   0,
		},
		{
			name:      "whitespace reasoning counts as zero characters",
			doc:       `{"mainText":"x","coreState":{"reasoning":" \t "}}`,
			mode:      types.ModeRealistic,
			profile:   zh,
			wantField: "coreState.reasoning",
			wantGot:   0,
		},
		{
			name:    "rules of other mode ignored",
			doc:     `{"mainText":"x","options":{"option3":"no"},"coreState":{"reasoning":"fine by me now"}}`,
			mode:    types.ModeRealistic,
			profile: en,
		},
		{
			name:      "realistic reasoning too short",
			doc:       `{"mainText":"x","coreState":{"reasoning":"ok sure"}}`,
			mode:      types.ModeRealistic,
			profile:   en,
			wantField: "coreState.reasoning",
			wantGot:   2,
		},
		{
			name:      "characters counted for zh",
			doc:       `{"mainText":"x","options":{"option3":"离开"}}`,
			mode:      types.ModeClassic,
			profile:   zh,
			wantField: "options.option3",
			wantGot:   2,
		},
		{
			name:    "zh long enough",
			doc:     `{"mainText":"x","options":{"option3":"慢慢地离开这里"}}`,
			mode:    types.ModeClassic,
			profile: zh,
		},
		{
			name:      "numeric state measured by literal",
			doc:       `{"mainText":"x","coreState":{"reasoning":42}}`,
			mode:      types.ModeRealistic,
			profile:   zh,
			wantField: "coreState.reasoning",
			wantGot:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(record(t, tt.doc), tt.mode, tt.profile)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			var short *ContentTooShortError
			require.True(t, errors.As(err, &short))
			assert.Equal(t, tt.wantField, short.Field)
			assert.Equal(t, tt.wantGot, short.Got)
			assert.Equal(t, tt.mode, short.Mode)
			assert.Equal(t, tt.profile.Counting, short.Counting)
		})
	}
}

func TestValidateContent_FirstViolationWins(t *testing.T) {
	profile := &locale.Profile{
		Name:        "custom",
		Counting:    locale.CountWords,
		Placeholder: "-",
		Rules: []locale.FieldRule{
			{Mode: types.ModeClassic, Field: "mainText", Min: 5},
			{Mode: types.ModeClassic, Field: "options.option1", Min: 2},
		},
	}
	r := record(t, `{"mainText":"too short","options":{"option1":"no"}}`)

	err := ValidateContent(r, types.ModeClassic, profile)
	var short *ContentTooShortError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, "mainText", short.Field)
	assert.Equal(t, "content too short: mainText in classic mode has 2 words, need at least 5", err.Error())

	all := CheckContent(r, types.ModeClassic, profile)
	require.Len(t, all, 2)
	assert.Equal(t, "options.option1", all[1].Field)
	assert.Equal(t, 1, all[1].Got)
}

func TestValidateContent_NilInputs(t *testing.T) {
	assert.NoError(t, ValidateContent(nil, types.ModeClassic, locale.MustPreset("en")))
	assert.NoError(t, ValidateContent(types.NewParsedRecord("x"), types.ModeClassic, nil))
}

func TestValidateContent_DoesNotMutateProfile(t *testing.T) {
	profile := locale.MustPreset("en")
	before := *profile
	before.Rules = append([]locale.FieldRule(nil), profile.Rules...)

	_ = ValidateContent(record(t, `{"mainText":"x","options":{"option3":"no"}}`), types.ModeClassic, profile)
	assert.Equal(t, before, *profile)
}
