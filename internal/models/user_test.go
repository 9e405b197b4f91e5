package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, Session{ExpiresAt: now.Add(time.Hour)}.Expired(now))
	assert.True(t, Session{ExpiresAt: now.Add(5 * time.Second)}.Expired(now))
	assert.True(t, Session{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
	assert.True(t, Session{}.Expired(now))
}
