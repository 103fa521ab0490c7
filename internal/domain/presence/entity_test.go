package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chocoalano/esas-api/internal/domain/attendance"
	"github.com/chocoalano/esas-api/internal/pkg/clock"
)

var wib = time.FixedZone("WIB", 7*3600)

func at(h, m, s int) time.Time {
	return time.Date(2025, 5, 2, h, m, s, 0, wib)
}

func TestClassify(t *testing.T) {
	nine := clock.TimeOfDay{Hour: 9}

	cases := []struct {
		name  string
		now   time.Time
		event attendance.EventType
		want  attendance.Status
	}{
		{"check-in before start", at(8, 55, 0), attendance.EventIn, attendance.StatusNormal},
		{"check-in after start", at(9, 5, 0), attendance.EventIn, attendance.StatusLate},
		{"check-in exactly at start", at(9, 0, 0), attendance.EventIn, attendance.StatusLate},
		{"check-out before start", at(8, 30, 0), attendance.EventOut, attendance.StatusUnlate},
		{"check-out after start", at(17, 0, 0), attendance.EventOut, attendance.StatusNormal},
		{"check-out exactly at start", at(9, 0, 0), attendance.EventOut, attendance.StatusNormal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.now, nine, tc.event))
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	shift := clock.TimeOfDay{Hour: 8, Minute: 30}
	now := at(8, 29, 59)

	first := Classify(now, shift, attendance.EventIn)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(now, shift, attendance.EventIn))
	}
}

func TestClassify_UsesNowLocation(t *testing.T) {
	// 01:55 UTC is 08:55 in WIB.
	now := time.Date(2025, 5, 2, 1, 55, 0, 0, time.UTC).In(wib)

	assert.Equal(t, attendance.StatusNormal, Classify(now, clock.TimeOfDay{Hour: 9}, attendance.EventIn))
}

func TestToken_Expired(t *testing.T) {
	tok := Token{ExpiresAt: at(9, 0, 10)}

	assert.False(t, tok.Expired(at(9, 0, 0)))
	assert.False(t, tok.Expired(at(9, 0, 10)))
	assert.True(t, tok.Expired(at(9, 0, 11)))
}

func TestRedeemRequest_Validate(t *testing.T) {
	ok := RedeemRequest{Type: "in", ID: 1, Token: "abc"}
	assert.NoError(t, ok.Validate())

	bad := RedeemRequest{Type: "sideways", ID: 0, Token: " "}
	err := bad.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "type")
		assert.Contains(t, err.Error(), "id")
		assert.Contains(t, err.Error(), "token")
	}
}

func TestIssueTokenRequest_Validate(t *testing.T) {
	ok := IssueTokenRequest{CompanyID: 1, DepartmentID: 2, ShiftID: 3, Type: "out"}
	assert.NoError(t, ok.Validate())

	bad := IssueTokenRequest{Type: "in"}
	assert.Error(t, bad.Validate())
}
