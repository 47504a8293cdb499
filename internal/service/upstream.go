package service

import (
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
	"github.com/noah-isme/hrms-lite/pkg/hrapi"
)

// upstreamError maps an HR API failure onto the gateway taxonomy. Rejections carrying server text
// keep it verbatim with the upstream status; anything else gets the action's fallback message.
func upstreamError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	apiErr, ok := hrapi.AsError(err)
	if !ok {
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, fallback)
	}
	if apiErr.Rejected() && apiErr.Status < 500 {
		message := apiErr.Detail
		if message == "" {
			message = fallback
		}
		return appErrors.Wrap(err, appErrors.ErrUpstreamRejected.Code, apiErr.Status, message)
	}
	if apiErr.Rejected() && apiErr.Detail != "" {
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, apiErr.Detail)
	}
	return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, fallback)
}
