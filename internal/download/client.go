package download

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kkdai/youtube/v2"

	"github.com/hamza1886/youtube-download-tool/internal/model"
)

// NewClient builds the extraction library client. The library manages its
// own chunked transfers; no global timeout is set so long streams are not
// cut off.
func NewClient() *youtube.Client {
	return &youtube.Client{
		HTTPClient: &http.Client{},
	}
}

// categoryForLibError maps extraction library errors onto the wrapper's
// error categories.
func categoryForLibError(err error) model.ErrorCategory {
	switch {
	case errors.Is(err, youtube.ErrLoginRequired),
		errors.Is(err, youtube.ErrVideoPrivate),
		errors.Is(err, youtube.ErrNotPlayableInEmbed):
		return model.CategoryRestricted
	case errors.Is(err, youtube.ErrInvalidPlaylist),
		errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return model.CategoryInvalidInput
	}

	var statusErr *youtube.ErrPlayabiltyStatus
	if errors.As(err, &statusErr) {
		return model.CategoryRestricted
	}

	return model.CategoryNetwork
}

func wrapFetchError(err error, context string) error {
	category := categoryForLibError(err)
	wrapped := fmt.Errorf("%s: %w", context, err)
	switch category {
	case model.CategoryRestricted:
		wrapped = fmt.Errorf("restricted content (login/paywall/age/private): %w", wrapped)
	case model.CategoryInvalidInput:
		wrapped = fmt.Errorf("invalid URL or video ID: %w", wrapped)
	}
	return model.WrapCategory(category, wrapped)
}

func isUnexpectedStatus(err error, code int) bool {
	var statusErr youtube.ErrUnexpectedStatusCode
	if errors.As(err, &statusErr) {
		return int(statusErr) == code
	}
	return false
}
