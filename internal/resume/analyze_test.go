package resume

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractSkills(t *testing.T) {
	text := "Built REST APIs in python and Go; deployed with docker on aws. Led agile ceremonies."

	got := ExtractSkills(text)
	assert.Equal(t, []string{"Python", "AWS", "Docker", "Agile", "API", "REST"}, got)
}

func TestExtractSkills_SubstringMatches(t *testing.T) {
	// "javascript" contains "java", matching the browser's substring test.
	assert.Equal(t, []string{"JavaScript", "Java"}, ExtractSkills("javascript"))
}

func TestExtractSkills_CapsAtTen(t *testing.T) {
	got := ExtractSkills(strings.Join(skillVocabulary, " "))
	assert.Len(t, got, MaxExtractedSkills)
	assert.Equal(t, skillVocabulary[:MaxExtractedSkills], got)
}

func TestExtractSkills_None(t *testing.T) {
	assert.Empty(t, ExtractSkills("gardening and pottery"))
}

func TestCharacteristics(t *testing.T) {
	text := "Bachelor of Science, 2012. Worked 2014-2020 with Python, SQL, Docker and Git."

	got := CharacteristicsAt(text, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []Characteristic{
		{Label: "Highest Degree", Value: "Bachelor's Degree (2020)"},
		{Label: "Years of Experience", Value: "8+"},
		{Label: "Key Technologies", Value: "Python, SQL, Docker"},
	}, got)
}

func TestCharacteristics_ReverseChronological(t *testing.T) {
	got := Characteristics("2021 present ... 2016 start")
	assert.Equal(t, []Characteristic{{Label: "Years of Experience", Value: "5+"}}, got)
}

func TestCharacteristics_SingleYearIgnored(t *testing.T) {
	assert.Empty(t, Characteristics("Graduated 2019"))
}

func TestCharacteristics_SameYearIgnored(t *testing.T) {
	assert.Empty(t, Characteristics("2019 and again 2019"))
}

func TestCharacteristics_CaseSensitiveTechnologies(t *testing.T) {
	assert.Empty(t, Characteristics("python sql"))
}

func TestCharacteristicsAt_ExpectedDegree(t *testing.T) {
	text := "Bachelor of Science in Computer Science May 2027, GPA 3.8"

	got := CharacteristicsAt(text, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []Characteristic{
		{Label: "Highest Degree", Value: "Bachelor of Science in Computer Science (Expected 2027)"},
	}, got)
}
