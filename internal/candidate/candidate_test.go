package candidate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplate = "https://www.indiabix.com/current-affairs/{date}/"

func TestGenerateCoversMonthThroughReference(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, time.June, 3, 17, 45, 0, 0, time.UTC)
	got := Generate(ref, testTemplate)

	require.Len(t, got, 3)
	assert.Equal(t, "https://www.indiabix.com/current-affairs/2024-06-01/", got[0].URL)
	assert.Equal(t, "https://www.indiabix.com/current-affairs/2024-06-02/", got[1].URL)
	assert.Equal(t, "https://www.indiabix.com/current-affairs/2024-06-03/", got[2].URL)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), got[0].Date)
}

func TestGenerateIsDeterministic(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	first := Generate(ref, testTemplate)
	second := Generate(ref.Add(6*time.Hour), testTemplate)

	require.Len(t, first, 29)
	assert.Equal(t, first, second)
}

func TestGenerateFirstOfMonth(t *testing.T) {
	t.Parallel()

	got := Generate(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), testTemplate)
	require.Len(t, got, 1)
	assert.Equal(t, "https://www.indiabix.com/current-affairs/2024-07-01/", got[0].Key())
}
