package waitlist

import (
	"github.com/akeren/aimaker-waitlist/config/router"
	apperrors "github.com/akeren/aimaker-waitlist/pkg/errors"
	"github.com/akeren/aimaker-waitlist/pkg/ratelimit"
)

type ControllerOptions struct {
	// AdminToken protects the listing endpoint when non-empty.
	AdminToken string
	// ExposeErrorDetails adds the raw storage cause to 500 responses.
	ExposeErrorDetails bool
	// JoinLimiter overrides the router default for submissions.
	JoinLimiter ratelimit.RateLimiter
}

func NewWaitlistController(service WaitlistService, opts ControllerOptions) *router.RESTController {
	return router.NewRESTController(
		"WaitlistController",
		"/api",
		func(rs *router.RouterService, c *router.RESTController) {
			join := joinWaitlistHandler(service, opts.ExposeErrorDetails)

			rs.AddPostHandler(c, opts.JoinLimiter, "join-waitlist", join)
			rs.AddPostHandler(c, opts.JoinLimiter, "simple-join", join)
			rs.AddGetHandler(c, nil, "get-waitlist", getWaitlistHandler(service, opts.ExposeErrorDetails), RequireAdminToken(opts.AdminToken))
		},
	)
}

func joinWaitlistHandler(service WaitlistService, exposeErrors bool) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req JoinWaitlistRequest

		if err := ctx.ShouldBind(&req); err != nil {
			logger.Debug("Rejected waitlist submission payload", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult(MessageInvalidEmail, validationErrors)
			}

			return router.BadRequestResult(MessageInvalidEmail, nil)
		}

		state, response, err := service.Join(ctx.Request.Context(), req.Email)
		if err != nil {
			logger.Debug("Waitlist submission failed", "state", state.String(), "type", apperrors.GetErrorType(err))
			return errorResult(err, exposeErrors)
		}

		return router.OKResult(response, MessageJoined)
	}
}

func getWaitlistHandler(service WaitlistService, exposeErrors bool) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		response, err := service.List(ctx.Request.Context())
		if err != nil {
			return errorResult(err, exposeErrors)
		}

		return router.ListResult(response.Emails, response.Count, MessageListed)
	}
}

func errorResult(err error, exposeErrors bool) *router.ServiceResult {
	result := router.ErrorResult(
		apperrors.HTTPStatusCode(err),
		apperrors.GetHumanReadableMessage(err),
		nil,
	)

	if exposeErrors && apperrors.IsStorageFailure(err) {
		result.WithErrorDetail(apperrors.GetErrorDetail(err))
	}

	return result
}
