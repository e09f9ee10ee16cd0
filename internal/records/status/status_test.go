package status

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"municipal/internal/records/integrity"
	"municipal/internal/records/models"
)

func TestApplyChangesOnlyStatus(t *testing.T) {
	req := models.ServiceRequest{
		RequestID:   3,
		CitizenID:   9,
		ServiceType: "Streetlight",
		RequestDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:      "Pending",
		Version:     4,
	}

	got, err := Apply(ServiceRequestPolicy, req, "In Progress")
	require.NoError(t, err)

	want := req
	want.Status = "In Progress"
	assert.Equal(t, want, got)
}

func TestApplyAllowsAnyTransition(t *testing.T) {
	rep := models.Report{ReportID: 1, Status: "Resolved"}

	for _, next := range []string{"Under Review", "Resolved", "reopened by phone"} {
		got, err := Apply(ReportPolicy, rep, next)
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
	}
}

func TestApplyLengthBound(t *testing.T) {
	req := models.ServiceRequest{Status: "Pending"}

	t.Run("at the limit", func(t *testing.T) {
		got, err := Apply(ServiceRequestPolicy, req, strings.Repeat("s", 30))
		require.NoError(t, err)
		assert.Len(t, got.Status, 30)
	})

	t.Run("over the limit", func(t *testing.T) {
		got, err := Apply(ServiceRequestPolicy, req, strings.Repeat("s", 31))
		var verr *integrity.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Fields.Has(Field))
		assert.Equal(t, "Pending", got.Status)
	})

	t.Run("reports are unbounded", func(t *testing.T) {
		_, err := Apply(ReportPolicy, models.Report{}, strings.Repeat("r", 500))
		require.NoError(t, err)
	})

	t.Run("multibyte characters count once", func(t *testing.T) {
		_, err := Apply(ServiceRequestPolicy, req, strings.Repeat("é", 30))
		require.NoError(t, err)
	})
}

func TestApplyRejectsBlank(t *testing.T) {
	_, err := Apply(ReportPolicy, models.Report{Status: "Under Review"}, "  ")
	var verr *integrity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, models.KindReport, verr.Kind)
}

func TestInitialOr(t *testing.T) {
	assert.Equal(t, "Pending", ServiceRequestPolicy.InitialOr(""))
	assert.Equal(t, "Under Review", ReportPolicy.InitialOr(" "))
	assert.Equal(t, "Closed", ReportPolicy.InitialOr("Closed"))
}
