package storage

import (
	"errors"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	apperrors "secondchance/internal/errors"
)

func TestTranslate(t *testing.T) {
	missing := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}
	err := translate("chair.jpg", missing)
	assert.True(t, errors.Is(err, apperrors.ErrFileNotFound))
	assert.Contains(t, err.Error(), "chair.jpg")

	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}
	err = translate("chair.jpg", denied)
	assert.False(t, errors.Is(err, apperrors.ErrFileNotFound))
}
