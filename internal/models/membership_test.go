package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMembership_IsValidOn(t *testing.T) {
	day := time.Date(2026, 3, 10, 18, 45, 0, 0, time.UTC)

	m := Membership{
		Status:    MembershipStatusActive,
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	// 结束日期等于当天仍有效，时分秒不参与比较
	assert.True(t, m.IsValidOn(day))

	m.EndDate = time.Date(2026, 3, 9, 23, 59, 59, 0, time.UTC)
	assert.False(t, m.IsValidOn(day))

	m.EndDate = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	m.Status = MembershipStatusExpired
	assert.False(t, m.IsValidOn(day))
}

func TestMember_FirstName(t *testing.T) {
	assert.Equal(t, "张", (&Member{Name: "张 伟"}).FirstName())
	assert.Equal(t, "Anna", (&Member{Name: "Anna Kowalska"}).FirstName())
	assert.Equal(t, "单名", (&Member{Name: "单名"}).FirstName())
}
