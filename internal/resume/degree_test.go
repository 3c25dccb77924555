package resume

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDegree(t *testing.T) {
	const thisYear = 2026

	tests := []struct {
		name  string
		text  string
		want  Degree
		found bool
	}{
		{
			name:  "full line with month is expected",
			text:  "Bachelor of Science in Computer Science May 2027, GPA 3.8",
			want:  Degree{Name: "Bachelor of Science in Computer Science", Year: 2027, Status: DegreeExpected},
			found: true,
		},
		{
			name:  "expected keyword in current year is in progress",
			text:  "Master of Science in Data Science Expected 2026",
			want:  Degree{Name: "Master of Science in Data Science", Year: 2026, Status: DegreeInProgress},
			found: true,
		},
		{
			name:  "past year is completed",
			text:  "Associate Degree, Community College 2015",
			want:  Degree{Name: "Associate Degree", Year: 2015, Status: DegreeCompleted},
			found: true,
		},
		{
			name:  "abbreviation is expanded",
			text:  "B.S. in Computer Science 2020",
			want:  Degree{Name: "Bachelor of Science in Computer Science", Year: 2020, Status: DegreeCompleted},
			found: true,
		},
		{
			name:  "mba with parenthetical",
			text:  "MBA (Finance) 2018",
			want:  Degree{Name: "Master of Business Administration (Finance)", Year: 2018, Status: DegreeCompleted},
			found: true,
		},
		{
			name:  "future doctor",
			text:  "Doctor of Medicine 2030",
			want:  Degree{Name: "Doctor of Medicine", Year: 2030, Status: DegreeExpected},
			found: true,
		},
		{
			name:  "bare mention takes latest nearby year",
			text:  "Bachelor of Science, 2012. Worked 2014-2020 with Python",
			want:  Degree{Name: "Bachelor's Degree", Year: 2020, Status: DegreeCompleted},
			found: true,
		},
		{
			name:  "year outside context is ignored",
			text:  "Master of Arts" + strings.Repeat(" filler", 10) + " 2019",
			want:  Degree{Name: "Master of Arts", Status: DegreeCompleted},
			found: true,
		},
		{
			name:  "bare mention without year keeps its text",
			text:  "Ph.D. candidate",
			want:  Degree{Name: "Ph.D.", Status: DegreeCompleted},
			found: true,
		},
		{
			name:  "bare abbreviation",
			text:  "MS in Statistics",
			want:  Degree{Name: "MS", Status: DegreeCompleted},
			found: true,
		},
		{name: "word containing ma", text: "Mathematics minor"},
		{name: "word containing ba", text: "Basketball captain"},
		{name: "word ending in ms before a year", text: "Programs 2020"},
		{name: "nothing", text: "Software engineer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectDegree(tt.text, thisYear)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDegree_String(t *testing.T) {
	tests := []struct {
		degree Degree
		want   string
	}{
		{Degree{Name: "Bachelor's Degree", Year: 2020, Status: DegreeCompleted}, "Bachelor's Degree (2020)"},
		{Degree{Name: "Master of Science", Year: 2026, Status: DegreeInProgress}, "Master of Science (In Progress - 2026)"},
		{Degree{Name: "Ph.D.", Year: 2028, Status: DegreeExpected}, "Ph.D. (Expected 2028)"},
		{Degree{Name: "MS", Status: DegreeCompleted}, "MS"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.degree.String())
		})
	}
}
