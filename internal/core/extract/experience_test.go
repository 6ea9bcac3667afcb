package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearsOfExperience(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "direct mention", text: "5 years of experience in Java", want: "5 years", wantOK: true},
		{name: "singular", text: "1 year experience", want: "1 year", wantOK: true},
		{name: "range takes lower bound", text: "3-5 years experience", want: "3 years", wantOK: true},
		{name: "labelled", text: "Experience: 7 years", want: "7 years", wantOK: true},
		{name: "plus and abbreviation", text: "10+ yrs exp", want: "10 years", wantOK: true},
		{name: "experienced suffix", text: "5 years experienced developer", want: "5 years", wantOK: true},
		{name: "month name dates", text: "Software Engineer, Jan 2015 - Jan 2018", want: "3 years", wantOK: true},
		{name: "dates across lines", text: "Acme Corp\nJan 2015\nGlobex\nJan 2018", want: "3 years", wantOK: true},
		{name: "partial years", text: "Mar 2019 - Aug 2020", want: "1 year 5 months", wantOK: true},
		{name: "year range", text: "Developer 2016-2019", want: "3 years", wantOK: true},
		{name: "numeric months", text: "06/2018 to 09/2018", want: "3 months", wantOK: true},
		{name: "direct mention beats dates", text: "2 years experience\nJan 2010 - Jan 2020", want: "2 years", wantOK: true},
		{name: "duration phrase", text: "Project duration: 2 years 6 months", want: "2 years 6 months", wantOK: true},
		{name: "invalid dates are skipped", text: "13/2019 and 14/2020", wantOK: false},
		{name: "single date", text: "Joined Jan 2020", wantOK: false},
		{name: "zero span falls through", text: "Jan 2020 and again Jan 2020", wantOK: false},
		{name: "nothing", text: "Fresher looking for opportunities", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := YearsOfExperience(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewMonthYear_Errors(t *testing.T) {
	_, err := newMonthYear(2020, 13)
	require.ErrorIs(t, err, errMonthOutOfRange)

	_, err = newMonthYear(1900, 5)
	require.ErrorIs(t, err, errYearOutOfRange)

	d, err := newMonthYear(2020, 2)
	require.NoError(t, err)
	assert.Equal(t, 2020*12+1, d.ordinal())
}

func TestFormatSpan(t *testing.T) {
	assert.Equal(t, "1 year 1 month", formatSpan(1, 1))
	assert.Equal(t, "2 years", formatSpan(2, 0))
	assert.Equal(t, "11 months", formatSpan(0, 11))
	assert.Equal(t, "", formatSpan(0, 0))
}
