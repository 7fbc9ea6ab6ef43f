package auth_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaniket/ecom-backend/internal/auth"
)

func TestManager_IssueAndVerify(t *testing.T) {
	manager := auth.NewManager("test-secret", time.Hour)
	userID := uuid.Must(uuid.NewV4())

	token, err := manager.Issue(userID, true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func TestManager_Verify_WrongSecret(t *testing.T) {
	token, err := auth.NewManager("secret-a", time.Hour).Issue(uuid.Must(uuid.NewV4()), false)
	require.NoError(t, err)

	_, err = auth.NewManager("secret-b", time.Hour).Verify(token)
	assert.True(t, errors.Is(err, auth.ErrInvalidToken))
}

func TestManager_Verify_TamperedToken(t *testing.T) {
	manager := auth.NewManager("test-secret", time.Hour)

	token, err := manager.Issue(uuid.Must(uuid.NewV4()), false)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	_, err = manager.Verify(tampered)
	assert.True(t, errors.Is(err, auth.ErrInvalidToken))
}

func TestManager_Verify_ExpiredToken(t *testing.T) {
	manager := auth.NewManager("test-secret", -time.Minute)

	token, err := manager.Issue(uuid.Must(uuid.NewV4()), false)
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.True(t, errors.Is(err, auth.ErrInvalidToken))
}
